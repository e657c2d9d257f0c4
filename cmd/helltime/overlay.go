package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Trissilein/helltime/internal/config"
	"github.com/Trissilein/helltime/internal/ipc"
	"github.com/Trissilein/helltime/internal/overlay"
)

func runOverlay(args []string) int {
	if len(args) == 0 {
		printOverlayUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "show":
		return runOverlayShow(args[1:])
	case "hide":
		return runOverlayHide(args[1:])
	case "position":
		return runOverlayPosition(args[1:])
	case "config":
		return runOverlayConfig(args[1:])
	case "help", "-h", "--help":
		printOverlayUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown overlay command: %s\n\n", args[0])
		printOverlayUsage(os.Stderr)
		return 2
	}
}

func printOverlayUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: helltime overlay <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  show       Show a toast")
	fmt.Fprintln(w, "  hide       Hide the toast")
	fmt.Fprintln(w, "  position   Get or set the overlay position")
	fmt.Fprintln(w, "  config     Enter or exit drag-to-reposition mode")
}

func runOverlayShow(args []string) int {
	fs := flag.NewFlagSet("overlay show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	title := fs.String("title", "", "toast title")
	body := fs.String("body", "", "toast body text")
	category := fs.String("category", "", "event category: helltide, legion, world_boss, other")
	color := fs.String("color", "", "background color, e.g. #0b1220")
	alpha := fs.Float64("alpha", 0, "background opacity (0.2-1.0)")
	scale := fs.Float64("scale", 0, "size multiplier (0.6-2.0)")
	at := fs.String("at", "", "position as X,Y")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: helltime overlay show --title TEXT [--body TEXT] [options]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *title == "" && *body == "" {
		fmt.Fprintln(os.Stderr, "overlay show requires --title or --body")
		return 2
	}

	toast := overlay.Payload{
		Title:    *title,
		Body:     *body,
		Category: overlay.Category(*category),
	}
	if *color != "" {
		rgb, err := config.ParseHexColor(*color)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		toast.BackgroundRGB = rgb
	}
	if *alpha != 0 {
		toast.BackgroundAlpha = *alpha
	}
	if *scale != 0 {
		toast.Scale = *scale
	}

	var pos *overlay.Position
	if *at != "" {
		p, err := parsePosition(*at)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		pos = p
	}

	if err := ipc.NewClient().OverlayShow(toast, pos); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOverlayHide(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: helltime overlay hide")
		return 2
	}
	if err := ipc.NewClient().OverlayHide(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOverlayPosition(args []string) int {
	client := ipc.NewClient()

	if len(args) == 0 {
		pos, err := client.OverlayGetPosition()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if pos == nil {
			fmt.Println("(not placed yet)")
			return 0
		}
		fmt.Printf("%d,%d\n", pos.X, pos.Y)
		return 0
	}

	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stdout, "Usage: helltime overlay position [X,Y]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Without arguments, prints the current position.")
		return 0
	}

	pos, err := parsePosition(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := client.OverlaySetPosition(*pos); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runOverlayConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: helltime overlay config <enter|exit>")
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "enter":
		var pos *overlay.Position
		if len(args) > 1 {
			p, err := parsePosition(args[1])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 2
			}
			pos = p
		}
		if err := client.OverlayEnterConfig(pos); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("drag the overlay to reposition, then run 'helltime overlay config exit'")
		return 0
	case "exit":
		if err := client.OverlayExitConfig(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown overlay config command: %s\n", args[0])
		return 2
	}
}

func parsePosition(s string) (*overlay.Position, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid position %q, expected X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid x coordinate %q", parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid y coordinate %q", parts[1])
	}
	return &overlay.Position{X: x, Y: y}, nil
}
