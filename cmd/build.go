package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/achilleasa/photonmap/photon"
	"github.com/achilleasa/photonmap/sampler"
	"github.com/achilleasa/photonmap/scene"
	"github.com/achilleasa/photonmap/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v3"
)

// buildFile is the top-level shape of a scene+config YAML document: a
// `photon_map` block (parsed into photon.Config) alongside a `scene` block
// describing the primitives to build a reference scene.Scene from.
type buildFile struct {
	PhotonMap photon.Config `yaml:"photon_map"`
	Scene     sceneFile     `yaml:"scene"`
}

type sceneFile struct {
	DefaultIOR float32            `yaml:"default_ior"`
	Materials  map[string]matFile `yaml:"materials"`
	Planes     []planeFile        `yaml:"planes"`
	Spheres    []sphereFile       `yaml:"spheres"`
}

type matFile struct {
	Type     string     `yaml:"type"`
	Diffuse  [3]float32 `yaml:"diffuse"`
	Emissive [3]float32 `yaml:"emissive"`
	Ior      float32    `yaml:"ior"`
}

type planeFile struct {
	Normal   [3]float32 `yaml:"normal"`
	Dist     float32    `yaml:"dist"`
	Material string     `yaml:"material"`
}

type sphereFile struct {
	Center   [3]float32 `yaml:"center"`
	Radius   float32    `yaml:"radius"`
	Material string     `yaml:"material"`
}

func (s sceneFile) build() (*scene.Scene, error) {
	materials := make(map[string]*scene.Material, len(s.Materials))
	for name, m := range s.Materials {
		var t scene.MaterialType
		switch m.Type {
		case "diffuse":
			t = scene.DiffuseMaterial
		case "specular":
			t = scene.SpecularMaterial
		case "refractive":
			t = scene.RefractiveMaterial
		case "emissive":
			t = scene.EmissiveMaterial
		default:
			return nil, fmt.Errorf("scene: unknown material type %q for %q", m.Type, name)
		}
		materials[name] = &scene.Material{
			Type:     t,
			Diffuse:  vec3(m.Diffuse),
			Emissive: vec3(m.Emissive),
			Ior:      m.Ior,
		}
	}

	var prims []*scene.Primitive
	for _, p := range s.Planes {
		mat, ok := materials[p.Material]
		if !ok {
			return nil, fmt.Errorf("scene: plane references unknown material %q", p.Material)
		}
		prims = append(prims, scene.NewPlane(vec3(p.Normal), p.Dist, mat))
	}
	for _, sp := range s.Spheres {
		mat, ok := materials[sp.Material]
		if !ok {
			return nil, fmt.Errorf("scene: sphere references unknown material %q", sp.Material)
		}
		prims = append(prims, scene.NewSphere(vec3(sp.Center), sp.Radius, mat))
	}

	return scene.NewScene(prims, s.DefaultIOR)
}

// Build loads a scene and photon_map configuration from a YAML file, runs
// the photon emission pass, and prints a summary of the built maps.
func Build(ctx *cli.Context) error {
	setupLogging(ctx)

	path := ctx.Args().First()
	if path == "" {
		return fmt.Errorf("usage: photonmap build <scene.yaml>")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc buildFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("photonmap: parsing %s: %w", path, err)
	}

	sc, err := doc.Scene.build()
	if err != nil {
		return err
	}

	orch, err := photon.NewOrchestrator(sc, doc.PhotonMap, func() photon.Sampler { return sampler.New() })
	if err != nil {
		return err
	}

	_, stats, err := orch.Build()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"lights", fmt.Sprintf("%d", stats.Lights)})
	table.Append([]string{"target photons", fmt.Sprintf("%d", stats.TargetPhotons)})
	table.Append([]string{"emitted photons", fmt.Sprintf("%d", stats.EmittedPhotons)})
	table.Append([]string{"caustic photons", fmt.Sprintf("%d", stats.CausticPhotons)})
	table.Append([]string{"global photons", fmt.Sprintf("%d", stats.GlobalPhotons)})
	table.Append([]string{"caustic octree nodes", fmt.Sprintf("%d", stats.CausticNodes)})
	table.Append([]string{"global octree nodes", fmt.Sprintf("%d", stats.GlobalNodes)})
	table.Append([]string{"build time", stats.BuildTime.String()})
	table.Render()

	logger.Noticef("photon map build summary\n%s", buf.String())
	return nil
}

func vec3(v [3]float32) types.Vec3 {
	return types.Vec3(v)
}
