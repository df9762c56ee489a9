package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"ccpm/pkg/boards"
	"ccpm/pkg/config"
	"ccpm/pkg/hierarchy"
	"ccpm/pkg/simulation"
	"ccpm/pkg/structure"
	"ccpm/pkg/toolchain"
	"ccpm/pkg/tools"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	// create and lsproj do not require an existing project
	switch os.Args[1] {
	case "create":
		handleCreate(os.Args[2:])
		return
	case "lsproj":
		handleLsproj(cwd)
		return
	}

	store, err := config.Open(cwd)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "No project found here. Create one first with 'ccpm create <name>'.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	projectDir := projectRoot(store)
	h := hierarchy.New(store, projectDir)
	resolver := toolchain.New(store)

	switch os.Args[1] {
	case "info":
		handleInfo(store, h)
	case "status":
		handleStatus(h)
	case "init-sources":
		handleInitSources(h)
	case "add-file":
		handleAddFile(h, os.Args[2:])
	case "remove-file":
		handleRemoveFile(h, os.Args[2:])
	case "rebuild":
		handleRebuild(h)
	case "detect":
		handleDetect(h, os.Args[2:])
	case "entities":
		printList("Entities", h.AvailableEntities())
	case "testbenches":
		printList("Testbenches", h.AvailableTestbenches())
	case "set-top":
		handleSetTop(h, os.Args[2:])
	case "check-toolchain":
		handleCheckToolchain(resolver)
	case "set-tool-path":
		handleSetToolPath(resolver, os.Args[2:])
	case "set-pref":
		handleSetPref(resolver, os.Args[2:])
	case "sim-time":
		handleSimTime(store, os.Args[2:])
	case "boards":
		handleBoards()
	case "analyze":
		handleAnalyze(store, resolver)
	case "synth":
		handleSynth(store, resolver, os.Args[2:])
	case "pnr":
		handlePnR(store, resolver, os.Args[2:])
	case "simulate":
		handleSimulate(store, resolver, h, os.Args[2:])
	case "program":
		handleProgram(store, resolver, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: ccpm <command> [args...]")
	fmt.Println("Commands:")
	fmt.Println("  create <name> [path]          Create a new GateMate project")
	fmt.Println("  info                          Show current project info")
	fmt.Println("  status                        Show project statistics and health")
	fmt.Println("  lsproj                        List all projects under the current directory")
	fmt.Println("  init-sources                  Initialize the hierarchy from src/")
	fmt.Println("  add-file <path> <cat> [-n]    Track a VHDL file (src|testbench|top), -n = no copy")
	fmt.Println("  remove-file <name> [cat]      Untrack a file (never deletes it)")
	fmt.Println("  rebuild                       Rebuild the hierarchy from disk")
	fmt.Println("  detect [--add]                Show (or adopt) untracked VHDL files")
	fmt.Println("  entities | testbenches        List parsed design units")
	fmt.Println("  set-top <file>                Set the single top module")
	fmt.Println("  check-toolchain               Probe all GateMate tools")
	fmt.Println("  set-tool-path <tool> <path>   Record a direct binary path")
	fmt.Println("  set-pref <tool|all> <pref>    Set a tool (or every tool's) access preference")
	fmt.Println("  sim-time <n> <prefix>         Set simulation duration")
	fmt.Println("  boards                        List known boards")
	fmt.Println("  analyze                       GHDL analyze all tracked sources")
	fmt.Println("  synth <entity>                Synthesize with Yosys + GHDL plugin")
	fmt.Println("  pnr <entity>                  Place and route")
	fmt.Println("  simulate <testbench>          Run a behavioral simulation")
	fmt.Println("  program <board> <entity> [mode]  Program a board (sram|flash)")
}

// projectRoot prefers the directory the config actually sits in over the
// recorded project_path, so a moved project is still usable.
func projectRoot(store *config.Store) string {
	dir := store.Dir()
	// The config file normally lives in <root>/config/.
	if filepath.Base(dir) == "config" {
		return filepath.Dir(dir)
	}
	return dir
}

func handleCreate(args []string) {
	if len(args) == 0 {
		fmt.Println("Please specify a project name.")
		return
	}
	basePath := "."
	if len(args) > 1 {
		basePath = args[1]
	}
	configPath, err := structure.CreateProject(args[0], basePath)
	if err != nil {
		log.Fatalf("Project creation failed: %v", err)
	}
	fmt.Printf("Created project %q (%s)\n", args[0], configPath)
}

func handleLsproj(cwd string) {
	configs, err := config.FindAllProjects(cwd)
	if err != nil {
		log.Fatal(err)
	}
	if len(configs) == 0 {
		fmt.Printf("No projects found in %q\n", cwd)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Project Path\tProject Name")
	for _, path := range configs {
		cfg := config.Load(path)
		relPath, _ := filepath.Rel(cwd, filepath.Dir(path))
		if relPath == "" {
			relPath = "."
		}
		fmt.Fprintf(w, "%s\t%s\n", relPath, cfg.ProjectName)
	}
	w.Flush()
}

func handleInfo(store *config.Store, h *hierarchy.Manager) {
	cfg := store.Config
	fmt.Printf("Project:  %s\n", cfg.ProjectName)
	fmt.Printf("Path:     %s\n", cfg.ProjectPath)
	fmt.Printf("Config:   %s (version %d)\n", store.Path, cfg.ConfigVersion)
	fmt.Printf("Pref:     %s\n", cfg.ToolchainPreference)
	info := h.FilesInfo()
	fmt.Printf("Files:    %d src, %d testbench, %d top\n",
		len(info["src"]), len(info["testbench"]), len(info["top"]))
}

func handleStatus(h *hierarchy.Manager) {
	stats := h.Statistics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Total files\t%d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Missing files\t%d\n", stats.MissingFiles)
	fmt.Fprintf(w, "Source files\t%d\n", stats.SrcFiles)
	fmt.Fprintf(w, "Testbench files\t%d\n", stats.TestbenchFiles)
	fmt.Fprintf(w, "Top files\t%d\n", stats.TopFiles)
	fmt.Fprintf(w, "Entities\t%d\n", stats.AvailableEntities)
	fmt.Fprintf(w, "Testbenches\t%d\n", stats.AvailableTestbenches)
	w.Flush()
	if stats.MissingFiles > 0 {
		fmt.Println("\nSome tracked files are missing on disk. Run 'ccpm rebuild' to re-derive the hierarchy, or remove the stale entries.")
	}
}

func handleInitSources(h *hierarchy.Manager) {
	if err := h.InitSources(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Project sources initialized.")
}

func handleAddFile(h *hierarchy.Manager, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: ccpm add-file <path> <src|testbench|top> [-n]")
		return
	}
	copyToProject := true
	for _, a := range args[2:] {
		if a == "-n" || a == "--no-copy" {
			copyToProject = false
		}
	}
	stored, err := h.AddFile(args[0], args[1], copyToProject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Tracked %s as %s\n", stored, args[1])
}

func handleRemoveFile(h *hierarchy.Manager, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: ccpm remove-file <name> [category]")
		return
	}
	category := ""
	if len(args) > 1 {
		category = args[1]
	}
	result := h.RemoveFile(args[0], category)
	fmt.Println(result.Message)
	if !result.Removed {
		os.Exit(1)
	}
}

func handleRebuild(h *hierarchy.Manager) {
	if !h.Rebuild() {
		fmt.Fprintln(os.Stderr, "Hierarchy rebuild failed, see the project log.")
		os.Exit(1)
	}
	fmt.Println("Hierarchy rebuilt from disk.")
	handleStatus(h)
}

func handleDetect(h *hierarchy.Manager, args []string) {
	detected := h.DetectManualFiles()
	if detected.Total() == 0 {
		fmt.Println("No untracked VHDL files found.")
		return
	}
	for cat, files := range map[string]map[string]string{
		"src": detected.Src, "testbench": detected.Testbench, "top": detected.Top,
	} {
		for name, path := range files {
			fmt.Printf("%-10s %s (%s)\n", cat, name, path)
		}
	}
	for _, a := range args {
		if a == "--add" {
			summary, err := h.AddDetectedFiles(detected, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Adopted %d files.\n", summary.Total)
			return
		}
	}
	fmt.Println("Run 'ccpm detect --add' to track them.")
}

func handleSetTop(h *hierarchy.Manager, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: ccpm set-top <file>")
		return
	}
	if err := h.SetTop(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Top module set to %s\n", args[0])
}

func handleCheckToolchain(r *toolchain.Resolver) {
	ok := r.CheckToolchain()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Tool\tPreference\tAccess")
	for _, tool := range toolchain.Tools() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tool, r.Preference(tool), r.ResolveAccess(tool))
	}
	w.Flush()
	if !ok {
		fmt.Fprintln(os.Stderr, "\nToolchain check failed: at least one tool is unreachable through PATH and direct path.")
		os.Exit(1)
	}
	if r.CheckGHDLYosysLink() {
		fmt.Println("\nGHDL plugin detected in Yosys.")
	} else {
		fmt.Println("\nWarning: the Yosys GHDL plugin may be missing.")
	}
}

func handleSetToolPath(r *toolchain.Resolver, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: ccpm set-tool-path <tool> <path>")
		return
	}
	if !r.AddToolPath(args[0], args[1]) {
		fmt.Fprintln(os.Stderr, "Failed to set tool path, see the toolchain log.")
		os.Exit(1)
	}
	fmt.Printf("Recorded direct path for %s\n", args[0])
}

func handleSetPref(r *toolchain.Resolver, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: ccpm set-pref <tool|all> <PATH|DIRECT|UNDEFINED>")
		return
	}
	if args[0] == "all" {
		if !r.SetGlobalPreference(args[1]) {
			fmt.Fprintln(os.Stderr, "Failed to set global preference, see the toolchain log.")
			os.Exit(1)
		}
		fmt.Printf("All tool preferences set to %s\n", strings.ToUpper(args[1]))
		return
	}
	if !r.SetPreference(args[0], args[1]) {
		fmt.Fprintln(os.Stderr, "Failed to set preference, see the toolchain log.")
		os.Exit(1)
	}
	fmt.Printf("Preference for %s set to %s\n", args[0], strings.ToUpper(args[1]))
}

func handleSimTime(store *config.Store, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: ccpm sim-time <n> <fs|ps|ns|us|ms|sec>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration %q\n", args[0])
		os.Exit(1)
	}
	sim := simulation.New(store)
	if !sim.SetSimulationLength(n, args[1]) {
		fmt.Fprintln(os.Stderr, "Failed to set simulation length.")
		os.Exit(1)
	}
	fmt.Printf("Simulation length set to %d%s\n", n, args[1])
}

func handleBoards() {
	path, err := boards.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := boards.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tModes")
	for _, id := range catalog.IDs() {
		b := catalog.Boards[id]
		fmt.Fprintf(w, "%s\t%s\t%v\n", id, b.Name, b.ProgrammingModes)
	}
	w.Flush()
}

func handleAnalyze(store *config.Store, r *toolchain.Resolver) {
	res := tools.NewGHDL(store, r).Analyze()
	exitOn(res, "Analysis")
}

func handleSynth(store *config.Store, r *toolchain.Resolver, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: ccpm synth <entity>")
		return
	}
	res := tools.NewYosys(store, r).Synthesize(args[0])
	exitOn(res, "Synthesis")
}

func handlePnR(store *config.Store, r *toolchain.Resolver, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: ccpm pnr <entity>")
		return
	}
	pnr := tools.NewPnR(store, r)
	if err := pnr.EnsureDefaultConstraintFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	res := pnr.PlaceAndRoute(args[0])
	exitOn(res, "Place and route")
}

func handleSimulate(store *config.Store, r *toolchain.Resolver, h *hierarchy.Manager, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: ccpm simulate <testbench-entity>")
		printList("Testbenches", h.AvailableTestbenches())
		return
	}
	sim := simulation.New(store)
	simTime, prefix := sim.CurrentSettings()
	ghdl := tools.NewGHDL(store, r)
	if res := ghdl.Analyze(); !res.OK() {
		exitOn(res, "Analysis")
	}
	if res := ghdl.Elaborate(args[0]); !res.OK() {
		exitOn(res, "Elaboration")
	}
	res := ghdl.Simulate(args[0], simTime, prefix)
	exitOn(res, "Simulation")
}

func handleProgram(store *config.Store, r *toolchain.Resolver, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: ccpm program <board> <entity> [sram|flash]")
		return
	}
	mode := tools.ModeSRAM
	if len(args) > 2 {
		mode = args[2]
	}
	path, err := boards.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := boards.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	board, ok := catalog.Find(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown board %q. Known boards:\n", args[0])
		printList("", catalog.IDs())
		os.Exit(1)
	}
	pnr := tools.NewPnR(store, r)
	res := tools.NewLoader(store, r).Program(board, pnr.BitstreamPath(args[1]), mode)
	exitOn(res, "Programming")
}

func printList(title string, items []string) {
	if title != "" {
		fmt.Printf("%s:\n", title)
	}
	if len(items) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
}

func exitOn(res tools.Result, what string) {
	if res.OK() {
		fmt.Printf("%s completed (run %s, %s)\n", what, res.RunID, res.Duration.Round(time.Millisecond))
		return
	}
	if res.TimedOut {
		fmt.Fprintf(os.Stderr, "%s timed out (run %s)\n", what, res.RunID)
	} else if res.Err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, res.Err)
	} else {
		fmt.Fprintf(os.Stderr, "%s failed with exit code %d (run %s)\n", what, res.ExitCode, res.RunID)
	}
	os.Exit(1)
}
