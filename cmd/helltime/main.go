package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Trissilein/helltime/internal/config"
	"github.com/Trissilein/helltime/internal/ipc"
	"github.com/Trissilein/helltime/internal/schedule"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: helltime daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: helltime daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "overlay":
		os.Exit(runOverlay(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "schedule":
		os.Exit(runSchedule(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: helltime <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon                Start the helltime daemon (foreground)")
	fmt.Fprintln(w, "  status                Show daemon status")
	fmt.Fprintln(w, "  reload                Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  overlay show          Show a toast on the overlay")
	fmt.Fprintln(w, "  overlay hide          Hide the overlay toast")
	fmt.Fprintln(w, "  overlay position      Get or set the overlay position")
	fmt.Fprintln(w, "  overlay config        Enter or exit drag-to-reposition mode")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window restore        Show and focus the host window")
	fmt.Fprintln(w, "  window hide           Hide the host window to the tray")
	fmt.Fprintln(w, "  window toggle         Toggle host window visibility")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  schedule              Print the upcoming event schedule")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config print          Print effective configuration")
	fmt.Fprintln(w, "  config path           Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve             Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'helltime <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: helltime status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("window_state:    %s\n", status.WindowState)
	fmt.Printf("reminder_active: %v\n", status.ReminderActive)
	fmt.Printf("overlay_supported: %v\n", status.Overlay.Supported)
	fmt.Printf("overlay_running:   %v\n", status.Overlay.Running)
	fmt.Printf("overlay_visible:   %v\n", status.Overlay.Visible)
	fmt.Printf("overlay_config:    %v\n", status.Overlay.ConfigMode)
	if status.Overlay.Position != nil {
		fmt.Printf("overlay_position:  %d,%d\n", status.Overlay.Position.X, status.Overlay.Position.Y)
	}
	if status.Overlay.LastError != "" {
		fmt.Printf("overlay_error:     %s\n", status.Overlay.LastError)
	}
	return 0
}

func runWindow(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: helltime window <restore|hide|toggle>")
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch args[0] {
	case "restore":
		err = client.WindowRestore()
	case "hide":
		err = client.WindowHide()
	case "toggle":
		err = client.WindowToggle()
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, "Usage: helltime window <restore|hide|toggle>")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n", args[0])
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSchedule(args []string) int {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: helltime schedule [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the upcoming event schedule via the daemon's cache.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	sched, err := client.GetSchedule()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(sched, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	printFamily("Helltide", sched.Helltide)
	printFamily("Legion", sched.Legion)
	printFamily("World Boss", sched.WorldBoss)
	return 0
}

func printFamily(label string, events []schedule.Event) {
	fmt.Printf("%s:\n", label)
	if len(events) == 0 {
		fmt.Println("  (none scheduled)")
		return
	}
	for _, e := range events {
		when := time.Unix(e.Time, 0).Local().Format("15:04")
		if e.Name != "" {
			fmt.Printf("  %s  %s\n", when, e.Name)
		} else {
			fmt.Printf("  %s\n", when)
		}
	}
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: helltime config <print|path>")
		return 2
	}

	switch args[0] {
	case "print":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, "Usage: helltime config <print|path>")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runReload(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: helltime reload")
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reload requested")
	return 0
}
