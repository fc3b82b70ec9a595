package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xmdtoolbox/zbp"
	"github.com/xmdtoolbox/zbp/pack"
	"github.com/xmdtoolbox/zbp/sheet"
	"github.com/xmdtoolbox/zbp/thumb"
)

const defaultDB = "zbp.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func decodeFile(file string, scaleAlpha bool) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, thumb.HeaderSize))
	if err != nil {
		return nil, err
	}

	return thumb.Extract(data, scaleAlpha)
}

func eachBrush(dir string, fn func(file string, info os.FileInfo) error) error {
	return filepath.Walk(dir, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name()[0] == '.' {
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".zbp") {
			return nil
		}
		return fn(file, info)
	})
}

func main() {
	app := cli.NewApp()

	app.Name = "zbp"
	app.Usage = "ZBrush brush library utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"ZBP_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "scan",
			Usage:       "Scan brush files and cache their thumbnails",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "install",
					Usage: "treat DIRECTORY as a ZBrush installation root",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				b, err := zbp.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer b.Close()

				scan := b.Scan
				if c.Bool("install") {
					scan = b.ScanInstall
				}
				if err := scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "thumb",
			Usage:       "Extract one brush thumbnail as PNG",
			Description: "",
			ArgsUsage:   "FILE [OUTPUT]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "raw-alpha",
					Usage: "keep the stored alpha channel (material and light presets)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				file := c.Args().First()

				pix, err := decodeFile(file, !c.Bool("raw-alpha"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				output := c.Args().Get(1)
				if output == "" {
					output = strings.TrimSuffix(file, filepath.Ext(file)) + ".png"
				}

				f, err := os.Create(output)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				m := &image.NRGBA{
					Pix:    pix,
					Stride: thumb.Width * 4,
					Rect:   image.Rect(0, 0, thumb.Width, thumb.Height),
				}
				if err := png.Encode(f, m); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "sheet",
			Usage:       "Write a GIF contact sheet of every thumbnail in a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "columns",
					Value: sheet.DefaultColumns,
					Usage: "thumbnails per row",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				var thumbs []image.Image
				if err := eachBrush(c.Args().First(), func(file string, info os.FileInfo) error {
					pix, err := decodeFile(file, true)
					if err != nil {
						logger.Printf("No thumbnail in \"%s\": %v\n", file, err)
						return nil
					}
					thumbs = append(thumbs, &image.NRGBA{
						Pix:    pix,
						Stride: thumb.Width * 4,
						Rect:   image.Rect(0, 0, thumb.Width, thumb.Height),
					})
					return nil
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := sheet.Encode(f, thumbs, c.Int("columns")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "pack",
			Usage:       "Bundle every thumbnail in a directory into a single file",
			Description: "",
			ArgsUsage:   "DIRECTORY [OUTPUT]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				db := pack.New()
				if err := eachBrush(c.Args().First(), func(file string, info os.FileInfo) error {
					pix, err := decodeFile(file, true)
					if err != nil {
						logger.Printf("No thumbnail in \"%s\": %v\n", file, err)
						return nil
					}
					name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
					return db.Set(name, info.ModTime().Unix(), pix)
				}); err != nil {
					return cli.NewExitError(err, 1)
				}

				output := c.Args().Get(1)
				if output == "" {
					output = pack.Filename
				}

				b, err := db.MarshalBinary()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := os.WriteFile(output, b, 0o644); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List indexed brushes",
			Description: "",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "favorites",
					Usage: "only list favorites",
				},
				&cli.StringFlag{
					Name:  "search",
					Usage: "filter by name or category",
				},
			},
			Action: func(c *cli.Context) error {
				b, err := zbp.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer b.Close()

				var brushes []zbp.Brush
				if query := c.String("search"); query != "" {
					brushes, err = b.Search(query)
				} else {
					brushes, err = b.Brushes(c.Bool("favorites"))
				}
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, brush := range brushes {
					marker := " "
					if brush.Favorite {
						marker = "*"
					}
					fmt.Printf("%s %-32s %-16s %s\n", marker, brush.Name, brush.Category, brush.Path)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
