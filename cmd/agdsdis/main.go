package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"agds-decomp/archive"
	"agds-decomp/decomp"
	"agds-decomp/patch"
	"agds-decomp/region"
	"agds-decomp/textenc"
)

// loadPatcher reads an overlay script from path (see patch.ParseOverlay)
// and returns a decomp.Patcher bound to it; path == "" means no patching.
func loadPatcher(path string) (decomp.Patcher, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening patch file: %w", err)
	}
	defer f.Close()

	overlay, err := patch.ParseOverlay(f)
	if err != nil {
		return nil, err
	}
	return patch.NewPatcher(overlay).Apply, nil
}

func openStore(file, format string) (decomp.ObjectStore, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "", "adb":
		return archive.OpenADB(f)
	case "grp":
		return archive.OpenGroupStore(f)
	default:
		return nil, fmt.Errorf("unknown archive format %q", format)
	}
}

func listADB(file, format string) error {
	store, err := openStore(file, format)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(store))
	for k := range store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Key                              Kind   Start    End")
	for _, k := range keys {
		e := store[k]
		fmt.Printf("%-32s  %-5s  %06X  %06X\n", k, kindName(e.Kind), e.StartOffset, e.EndOffset)
	}
	return nil
}

func kindName(k decomp.EntryKind) string {
	switch k {
	case decomp.EntryCode:
		return "code"
	case decomp.EntryString:
		return "str"
	case decomp.EntryRaw:
		return "raw"
	case decomp.EntryDummy:
		return "dummy"
	case decomp.EntryGlobal:
		return "global"
	case decomp.EntryScene:
		return "scene"
	}
	return "?"
}

func extractADB(file, entry, outDir, format string) error {
	store, err := openStore(file, format)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create directory %s: %w", outDir, err)
	}

	for key, e := range store {
		if entry != "" && key != entry {
			continue
		}
		var data []byte
		switch e.Kind {
		case decomp.EntryCode:
			data = e.Code
		case decomp.EntryRaw:
			data = e.Raw
		default:
			continue
		}
		if err := os.WriteFile(outDir+string(os.PathSeparator)+key, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func decompileADB(file, encoding, remapName, format, patchFile string) error {
	store, err := openStore(file, format)
	if err != nil {
		return err
	}

	cfg := decomp.DefaultConfig()
	if remapName != "" {
		switch remapName {
		case "identity":
			cfg.Remap = decomp.RemapIdentity
		case "permutation_a":
			cfg.Remap = decomp.RemapPermutationA
		case "permutation_b":
			cfg.Remap = decomp.RemapPermutationB
		default:
			return fmt.Errorf("unknown remap table %q", remapName)
		}
	}
	if encoding != "" {
		if err := textenc.SetDefault(encoding); err != nil {
			return err
		}
	}
	patcher, err := loadPatcher(patchFile)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	result := decomp.Batch(store, decomp.BatchOptions{
		Config:       cfg,
		RegionParser: region.SceneXref,
		Patcher:      patcher,
		Logger:       logger,
	})

	for _, obj := range result.Objects {
		if obj.Result == nil {
			continue
		}
		fmt.Printf("; --- object %s ---\n", obj.Key)
		if obj.Result.Err != nil {
			fmt.Printf("; error at offset 0x%X: %v\n", obj.Result.ErrOffset, obj.Result.Err)
			continue
		}
		fmt.Print(obj.Result.Rendered)
	}
	return nil
}

func xrefsADB(file, encoding, format, patchFile string) error {
	store, err := openStore(file, format)
	if err != nil {
		return err
	}
	if encoding != "" {
		if err := textenc.SetDefault(encoding); err != nil {
			return err
		}
	}
	patcher, err := loadPatcher(patchFile)
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	result := decomp.Batch(store, decomp.BatchOptions{
		Config:       decomp.DefaultConfig(),
		RegionParser: region.SceneXref,
		Patcher:      patcher,
		Logger:       logger,
	})

	for _, obj := range result.Objects {
		if obj.Result == nil || obj.Result.Err != nil {
			continue
		}
		for _, x := range obj.Result.Xrefs {
			fmt.Printf("%s -> %s [%s]\n", obj.Key, x.OtherKey, x.Kind.Tag)
		}
	}

	targets := make([]string, 0, len(result.Store))
	for key, entry := range result.Store {
		if len(entry.BackRefs) > 0 {
			targets = append(targets, key)
		}
	}
	sort.Strings(targets)
	for _, key := range targets {
		for _, br := range result.Store[key].BackRefs {
			fmt.Printf("%s <- %s [%s]\n", key, br.FromKey, br.Kind.Tag)
		}
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "agdsdis",
		Usage: "Decompile a proprietary adventure-game script database",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List every object in an archive",
				ArgsUsage: "archive-file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Usage: "archive container: adb (default) or grp"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return cli.Exit("insufficient arguments", 1)
					}
					return listADB(c.Args().First(), c.String("format"))
				},
			},
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "Extract one or all objects' raw bytes",
				ArgsUsage: "archive-file [key]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "outdir", Value: "."},
					&cli.StringFlag{Name: "format", Usage: "archive container: adb (default) or grp"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return cli.Exit("insufficient arguments", 1)
					}
					return extractADB(c.Args().First(), c.Args().Get(1), c.String("outdir"), c.String("format"))
				},
			},
			{
				Name:      "decompile",
				Aliases:   []string{"d"},
				Usage:     "Decompile every code object and print pseudo-code",
				ArgsUsage: "archive-file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "encoding", Usage: "text encoding name (default windows-1250)"},
					&cli.StringFlag{Name: "remap", Usage: "opcode remap table: identity|permutation_a|permutation_b"},
					&cli.StringFlag{Name: "format", Usage: "archive container: adb (default) or grp"},
					&cli.StringFlag{Name: "patch", Usage: "overlay script applying byte-range edits before decompiling"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return cli.Exit("insufficient arguments", 1)
					}
					return decompileADB(c.Args().First(), c.String("encoding"), c.String("remap"), c.String("format"), c.String("patch"))
				},
			},
			{
				Name:      "xrefs",
				Usage:     "Print discovered cross-references",
				ArgsUsage: "archive-file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "encoding", Usage: "text encoding name (default windows-1250)"},
					&cli.StringFlag{Name: "format", Usage: "archive container: adb (default) or grp"},
					&cli.StringFlag{Name: "patch", Usage: "overlay script applying byte-range edits before decompiling"},
				},
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return cli.Exit("insufficient arguments", 1)
					}
					return xrefsADB(c.Args().First(), c.String("encoding"), c.String("format"), c.String("patch"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
