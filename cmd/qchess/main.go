// qchess - quantum chess engine command line interface
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/pkg/engine"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "play":
		cmdPlay(args)
	case "eval":
		cmdEval(args)
	case "bestmove":
		cmdBestMove(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`qchess - Quantum Chess Engine

Usage: qchess <command> [options]

Commands:
  play      Interactive game against the engine
  eval      Evaluate a position reached by a move sequence
  bestmove  Find the best move for a position

Use "qchess <command> -h" for command-specific help.

Move Format:
  Moves use coordinate notation, e.g. "e2e4" or "e2-e4".
  A move sequence is comma separated: "e2e4,e7e5,g1f3".`)
}

func newGame(mode string, depth int) (*engine.Game, error) {
	g, err := engine.NewGame("cli", engine.GameConfig{
		Mode:        engine.GameMode(mode),
		SearchDepth: depth,
		Log:         zerolog.Nop(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

func parseMove(s string) (from, to engine.Square, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(s) != 4 {
		return 0, 0, fmt.Errorf("move should look like e2e4")
	}
	from, err = engine.ParseSquare(s[:2])
	if err != nil {
		return 0, 0, err
	}
	to, err = engine.ParseSquare(s[2:])
	return from, to, err
}

// applyMoves replays a comma separated move sequence onto g.
func applyMoves(g *engine.Game, sequence string) error {
	if sequence == "" {
		return nil
	}
	for _, ms := range strings.Split(sequence, ",") {
		from, to, err := parseMove(ms)
		if err != nil {
			return fmt.Errorf("move %q: %w", ms, err)
		}
		res, err := g.MakeMove(from, to, "")
		if err != nil {
			return fmt.Errorf("move %q: %s", ms, res.Message)
		}
	}
	return nil
}

var pieceGlyphs = map[string]string{
	"white:pawn": "P", "white:knight": "N", "white:bishop": "B",
	"white:rook": "R", "white:queen": "Q", "white:king": "K",
	"black:pawn": "p", "black:knight": "n", "black:bishop": "b",
	"black:rook": "r", "black:queen": "q", "black:king": "k",
}

func printBoard(g *engine.Game) {
	board := g.Board()
	for rank := 7; rank >= 0; rank-- {
		fmt.Printf("%d ", rank+1)
		for file := 0; file < 8; file++ {
			sq := engine.NewSquare(file, rank)
			piece, ok := board.PieceAt(sq)
			if !ok {
				fmt.Print(" . ")
				continue
			}
			glyph := pieceGlyphs[piece.Color.String()+":"+piece.Type.String()]
			if piece.InSuperposition {
				fmt.Printf("%s? ", glyph)
			} else {
				fmt.Printf(" %s ", glyph)
			}
		}
		fmt.Println()
	}
	fmt.Println("   a  b  c  d  e  f  g  h")
	fmt.Printf("%s to move (%s)\n", g.Turn(), g.Status())
}

func printEvaluation(ev engine.Evaluation) {
	fmt.Printf("Combined score: %+.2f\n", ev.CombinedScore)
	fmt.Printf("  Classical: %+.2f (material %+.2f, positional %+.2f, mobility %+.2f)\n",
		ev.ClassicalScore, ev.Components.Material, ev.Components.Positional, ev.Components.Mobility)
	fmt.Printf("  Quantum:   %+.2f\n", ev.QuantumScore)
}

func cmdEval(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	moves := fs.String("moves", "", "Comma separated move sequence from the start position")
	mode := fs.String("mode", "classical", "Game mode (classical, quantum, hybrid)")
	fs.Parse(args)

	g, err := newGame(*mode, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyMoves(g, *moves); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printBoard(g)
	printEvaluation(g.Evaluate())
}

func cmdBestMove(args []string) {
	fs := flag.NewFlagSet("bestmove", flag.ExitOnError)
	moves := fs.String("moves", "", "Comma separated move sequence from the start position")
	mode := fs.String("mode", "classical", "Game mode (classical, quantum, hybrid)")
	depth := fs.Int("depth", 3, "Search depth in plies")
	fs.Parse(args)

	g, err := newGame(*mode, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyMoves(g, *moves); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	best := g.FindBestMove()
	if best.Move == nil {
		fmt.Println("No legal moves")
		return
	}
	fmt.Printf("Best move for %s: %s  (score %+.2f, depth %d)\n",
		g.Turn(), best.Move, best.Score, best.Depth)
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	mode := fs.String("mode", "quantum", "Game mode (classical, quantum, hybrid)")
	depth := fs.Int("depth", 3, "Engine search depth in plies")
	fs.Parse(args)

	g, err := newGame(*mode, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing %s chess. You are white. Type \"help\" for commands.\n\n", *mode)
	printBoard(g)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			printPlayHelp()
		case "board":
			printBoard(g)
		case "eval":
			printEvaluation(g.Evaluate())
		case "moves":
			if len(fields) < 2 {
				fmt.Println("usage: moves <square>")
				continue
			}
			sq, err := engine.ParseSquare(fields[1])
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			targets := g.LegalMoves(sq)
			if len(targets) == 0 {
				fmt.Println("no moves")
				continue
			}
			names := make([]string, len(targets))
			for i, t := range targets {
				names[i] = t.String()
			}
			fmt.Println(strings.Join(names, " "))
		case "super":
			if len(fields) < 2 {
				fmt.Println("usage: super <square>")
				continue
			}
			sq, err := engine.ParseSquare(fields[1])
			if err == nil {
				err = g.CreateSuperposition(sq)
			}
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("superposition created at %s\n", fields[1])
		case "entangle":
			if len(fields) < 3 {
				fmt.Println("usage: entangle <square> <square>")
				continue
			}
			a, err := engine.ParseSquare(fields[1])
			var b engine.Square
			if err == nil {
				b, err = engine.ParseSquare(fields[2])
			}
			if err == nil {
				err = g.CreateEntanglement(a, b)
			}
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("entangled %s and %s\n", fields[1], fields[2])
		case "measure":
			if len(fields) < 2 {
				for sq, out := range g.MeasureAll() {
					fmt.Printf("%s: %s\n", sq, describeOutcome(out))
				}
				continue
			}
			sq, err := engine.ParseSquare(fields[1])
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("%s: %s\n", fields[1], describeOutcome(g.MeasureSquare(sq)))
		default:
			playMove(g, fields[0])
			if g.Status().Terminal() {
				printBoard(g)
				fmt.Printf("Game over: %s\n", g.Status())
				return
			}
		}
	}
}

func playMove(g *engine.Game, moveStr string) {
	from, to, err := parseMove(moveStr)
	if err != nil {
		fmt.Printf("error: %v (type \"help\" for commands)\n", err)
		return
	}

	res, err := g.MakeMove(from, to, "")
	if err != nil {
		fmt.Printf("illegal: %s\n", res.Message)
		return
	}
	reportMove("you", res)
	if g.Status().Terminal() {
		return
	}

	// A dissolved piece ends the action without changing the turn.
	if g.Turn() == engine.White {
		printBoard(g)
		return
	}

	best := g.FindBestMove()
	if best.Move == nil {
		return
	}
	reply, err := g.MakeMove(best.Move.From, best.Move.To, "")
	if err != nil {
		fmt.Printf("engine error: %v\n", err)
		return
	}
	fmt.Printf("engine plays %s\n", best.Move)
	reportMove("engine", reply)
	printBoard(g)
}

func reportMove(who string, res engine.MoveResult) {
	if res.QuantumEvent != "" {
		fmt.Printf("  [%s] %s\n", who, res.QuantumEvent)
	}
	if res.PieceCaptured != "" {
		fmt.Printf("  [%s] captured %s\n", who, res.PieceCaptured)
	}
	if res.IsCheck {
		fmt.Println("  check!")
	}
}

func describeOutcome(out engine.MeasureOutcome) string {
	if !out.Present {
		return "collapsed away"
	}
	return fmt.Sprintf("%s %s remains", out.Piece.Color, out.Piece.Type)
}

func printPlayHelp() {
	fmt.Println(`Commands:
  e2e4              make a move (engine replies as black)
  moves <square>    list legal targets for a square
  super <square>    put a piece into superposition
  entangle <a> <b>  entangle two pieces
  measure [square]  collapse one square, or all superposed squares
  eval              evaluate the current position
  board             redraw the board
  quit              leave the game`)
}
