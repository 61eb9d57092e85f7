package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"

	"winfs/internal/app"
	"winfs/internal/config"
	"winfs/internal/logging"
	"winfs/internal/model"
	"winfs/internal/tags"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "winfs-tools",
		Repository: "winfs",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/winfs-tools/winfs/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winfs [options]\n\n")
		fmt.Fprintf(os.Stderr, "winfs finds files under a path and bulk edits their ID3 tags.\n")
		fmt.Fprintf(os.Stderr, "Paths may use either separator, drive letters or file:// URLs.\n")
		fmt.Fprintf(os.Stderr, "System folders on the primary drive are never searched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  winfs                                  # List files in the current directory\n")
		fmt.Fprintf(os.Stderr, "  winfs -p 'D:\\Music' -e mp3 -r          # List every mp3 on D:\\Music\n")
		fmt.Fprintf(os.Stderr, "  winfs -p ~/Music -e mp3 -t artist -R 'Nina Simone'\n")
		fmt.Fprintf(os.Stderr, "  winfs -e mp3 -t title -f ' (Official Video)' -n   # Preview a cleanup\n")
		fmt.Fprintf(os.Stderr, "\nExit codes: 0 ok, 1 error, 2 no usable path, 3 forbidden path\n")
	}

	pathFlag := pflag.StringP("path", "p", "", "Path to search (default: current directory)")
	extFlag := pflag.StringP("ext", "e", "", "Only match files with this extension (e.g. mp3)")
	recurseFlag := pflag.BoolP("recurse", "r", false, "Search subdirectories")
	tagFlag := pflag.StringP("tag", "t", "", "Tag to edit: artist, title, album, genre, year or a frame id")
	findFlag := pflag.StringP("find", "f", "", "Only replace this substring of the tag")
	replaceFlag := pflag.StringP("replace", "R", "", "New tag value, or replacement for --find")
	dryRunFlag := pflag.BoolP("dry-run", "n", false, "Show tag changes without writing them")
	jsonFlag := pflag.BoolP("json", "j", false, "Output results as JSON")
	configFlag := pflag.StringP("config", "c", config.DefaultPath(), "Config file")
	noPromptFlag := pflag.Bool("no-prompt", false, "Never ask for a path; fail instead")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Log every pipeline step")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("winfs version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(app.ExitError)
	}
	cfg.Detect(os.Getenv)

	logger := logging.New(os.Stderr, cfg.Level(), *verboseFlag)

	a, err := app.New(cfg, app.NewPrinter(os.Stdout, false), logger, *dryRunFlag)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(app.ExitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = a.Run(ctx, app.Options{
		Path:    *pathFlag,
		PathSet: pflag.Lookup("path").Changed,
		Ext:     *extFlag,
		Recurse: *recurseFlag,
		Edit: tags.Edit{
			Tag:     *tagFlag,
			Find:    *findFlag,
			Replace: *replaceFlag,
		},
		JSON:        *jsonFlag,
		Interactive: app.Interactive(os.Stdin, os.Stdout, *noPromptFlag || *jsonFlag),
	})
	if err != nil {
		logger.Error(err)
		stop()
		os.Exit(app.ExitCode(err))
	}
}
