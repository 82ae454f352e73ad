package main

import (
	"os"

	"github.com/achilleasa/photonmap/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "photonmap"
	app.Usage = "build photon maps for a scene using two-pass photon mapping"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build caustic and global photon maps for a scene",
			Description: `
Parse a scene + photon_map configuration from a YAML file, trace the
emission pass and build the caustic and global photon octrees, then print a
summary of the result.`,
			ArgsUsage: "scene.yaml",
			Action:    cmd.Build,
		},
	}

	app.Run(os.Args)
}
