// nestctl loads a scene file and prints the world-space pose of its nodes.
//
// It is a debugging aid for hierarchies: every node's world position,
// orientation (XYZ Euler degrees) and scale are computed by walking its
// parent chain exactly as a server would, and broken chains are reported in
// the STATUS column.
//
//	nestctl scene.yaml
//	nestctl --node knight --format yaml scene.yaml
//	cat scene.yaml | nestctl -
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oriumgames/nestable"
	"github.com/oriumgames/nestable/internal/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// row is one printed node.
type row struct {
	Name     string    `yaml:"name"`
	ID       string    `yaml:"id"`
	Parent   string    `yaml:"parent,omitempty"`
	Depth    int       `yaml:"depth"`
	Joints   []string  `yaml:"joints,omitempty,flow"`
	Position []float64 `yaml:"position,flow"`
	Rotation []float64 `yaml:"rotation,flow"`
	Scale    []float64 `yaml:"scale,flow"`
	Status   string    `yaml:"status"`
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		maxDepth int
		format   string
		node     string
		verbose  bool
	)

	flagSet := pflag.NewFlagSet("nestctl", pflag.ContinueOnError)
	flagSet.IntVar(&maxDepth, "max-depth", nestable.DefaultMaxDepth, "parent links followed before a chain counts as broken")
	flagSet.StringVar(&format, "format", "table", "output format: table or yaml")
	flagSet.StringVar(&node, "node", "", "only print this node and its descendants")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log chain resolution at debug level")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nestctl [flags] <scene.yaml | ->\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one scene file, got %d arguments", flagSet.NArg())
	}
	if format != "table" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want table or yaml)", format)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	file, err := loadScene(flagSet.Arg(0), stdin)
	if err != nil {
		return err
	}

	reg := nestable.NewRegistry(nestable.WithMaxDepth(maxDepth))
	objects, err := file.Build(reg, nestable.WithMaxDepth(maxDepth))
	if err != nil {
		return err
	}

	rows, err := collect(reg, objects, node)
	if err != nil {
		return err
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	}
	return writeTable(stdout, rows)
}

func loadScene(path string, stdin io.Reader) (*scene.File, error) {
	if path == "-" {
		return scene.Load(stdin)
	}
	return scene.LoadFile(path)
}

// collect computes a row per object, in file order, or for the subtree of
// the named node in depth-first order.
func collect(reg *nestable.Registry, objects []*scene.Object, name string) ([]row, error) {
	names := make(map[uuid.UUID]string, len(objects))
	for _, o := range objects {
		names[o.ID()] = o.Name()
	}

	if name == "" {
		rows := make([]row, 0, len(objects))
		for _, o := range objects {
			rows = append(rows, newRow(o, names, depthOf(o)))
		}
		return rows, nil
	}

	var start *scene.Object
	for _, o := range objects {
		if o.Name() == name {
			start = o
			break
		}
	}
	if start == nil {
		return nil, fmt.Errorf("no node named %q", name)
	}

	// Resolving every parent first links children to their parents.
	reg.Roots()

	var rows []row
	reg.Walk(start.ID(), func(n nestable.Node, depth int) bool {
		if o, ok := n.(*scene.Object); ok {
			rows = append(rows, newRow(o, names, depth))
		}
		return true
	})
	return rows, nil
}

func newRow(o *scene.Object, names map[uuid.UUID]string, depth int) row {
	world, err := o.TransformChecked()
	pose := scene.PoseOf(world)

	parent := names[o.ParentID()]
	if parent == "" && o.ParentID() != nestable.Nil {
		parent = o.ParentID().String()
	}

	return row{
		Name:     o.Name(),
		ID:       o.ID().String(),
		Parent:   parent,
		Depth:    depth,
		Position: round(pose.Position),
		Rotation: round(pose.Rotation),
		Scale:    round(pose.Scale),
		Joints:   o.JointNames(),
		Status:   status(err),
	}
}

// depthOf counts resolvable ancestors.
func depthOf(o *scene.Object) int {
	depth := 0
	for p, ok := o.Parent(); ok && depth < o.MaxDepth(); p, ok = p.Spatial().Parent() {
		depth++
	}
	return depth
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, nestable.ErrParentNotFound):
		return "parent-not-found"
	case errors.Is(err, nestable.ErrChainTooDeep):
		return "chain-too-deep"
	case errors.Is(err, nestable.ErrJointFallback):
		return "joint-fallback"
	}
	return err.Error()
}

func round(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		// +0 turns -0 into 0.
		out[i] = mgl64.Round(x, 6) + 0
	}
	return out
}

func writeTable(w io.Writer, rows []row) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "NAME\tPARENT\tPOSITION\tROTATION\tSCALE\tJOINTS\tSTATUS\n")
	for _, r := range rows {
		parent := r.Parent
		if parent == "" {
			parent = "-"
		}
		joints := strings.Join(r.Joints, ",")
		if joints == "" {
			joints = "-"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			indent(r.Depth), r.Name, parent, vec(r.Position), vec(r.Rotation), vec(r.Scale), joints, r.Status)
	}
	return tw.Flush()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func vec(v []float64) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
