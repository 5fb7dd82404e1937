// SPDX-License-Identifier: EPL-2.0

package project

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/audtl/beat"
	"github.com/ik5/audtl/filesource"
	"github.com/ik5/audtl/timeline"
	"gopkg.in/yaml.v3"
)

const (
	defaultBPM            = 120
	defaultPixelPerSample = 0.01
)

// Env is what a loaded tree is built on.
type Env struct {
	// Arena receives the child lists; a fresh one is used when nil.
	Arena *timeline.Arena
	// Cache opens the files and fixes the format of every group.
	Cache *filesource.Cache
}

// Project is a loaded tree.
type Project struct {
	Root   *timeline.Group
	Beat   *beat.Beat
	Groups map[string]*timeline.Group
}

// Destroy releases every group, including those the root does not reach.
func (p *Project) Destroy() {
	for _, g := range p.Groups {
		g.Destroy()
	}
}

func Load(r io.Reader, env Env, opts ...Option) (*Project, error) {
	o := newOptions(opts)

	var doc file
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}

	l := &loader{options: o, env: env, doc: doc}
	p, err := l.build()
	if err != nil {
		l.cleanup()
		return nil, err
	}

	o.log.Info("project loaded", "root", doc.Root, "groups", len(p.Groups))
	return p, nil
}

func LoadFile(path string, env Env, opts ...Option) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Load(f, env, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

type loader struct {
	options

	env    Env
	doc    file
	groups map[string]*timeline.Group
	placed map[*timeline.Group]bool
}

func (l *loader) build() (*Project, error) {
	if l.env.Arena == nil {
		l.env.Arena = timeline.NewArena()
	}
	format := l.env.Cache.Format()
	b := l.beat(format)

	l.groups = make(map[string]*timeline.Group, len(l.doc.Groups))
	l.placed = make(map[*timeline.Group]bool)

	for _, gs := range l.doc.Groups {
		if _, dup := l.groups[gs.Name]; dup || gs.Name == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, gs.Name)
		}

		g := timeline.NewGroup(l.env.Arena, b, format, gs.Name)
		l.groups[gs.Name] = g

		if err := l.apply(g, gs.Loop, gs.Duration); err != nil {
			return nil, fmt.Errorf("group %q: %w", gs.Name, err)
		}
	}

	root, ok := l.groups[l.doc.Root]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRoot, l.doc.Root)
	}

	for _, gs := range l.doc.Groups {
		if gs.LinkedTo == "" {
			continue
		}
		if err := l.link(gs); err != nil {
			l.log.Warn("link rejected", "group", gs.Name, "master", gs.LinkedTo, "error", err)
			return nil, err
		}
	}

	for _, gs := range l.doc.Groups {
		g := l.groups[gs.Name]
		for i, cs := range gs.Children {
			if err := l.addChild(g, cs); err != nil {
				return nil, fmt.Errorf("group %q child %d: %w", gs.Name, i, err)
			}
		}
	}

	return &Project{Root: root, Beat: b, Groups: l.groups}, nil
}

func (l *loader) beat(format timeline.Format) *beat.Beat {
	t := l.doc.Tempo
	if t.BPM <= 0 {
		t.BPM = defaultBPM
	}
	if t.PixelPerSample <= 0 {
		t.PixelPerSample = defaultPixelPerSample
	}

	var opts []beat.Option
	if t.Divisions > 0 {
		opts = append(opts, beat.WithDivisions(t.Divisions))
	}
	return beat.New(t.BPM, float64(format.SampleRate), t.PixelPerSample, opts...)
}

func (l *loader) link(gs groupSpec) error {
	g := l.groups[gs.Name]
	master, ok := l.groups[gs.LinkedTo]
	if !ok {
		return fmt.Errorf("group %q links to %w %q", gs.Name, ErrUnknownGroup, gs.LinkedTo)
	}
	if len(gs.Children) > 0 {
		return fmt.Errorf("%w: linked group %q lists children", ErrInvalidTree, gs.Name)
	}
	if l.linkTarget(gs.LinkedTo) != "" {
		return fmt.Errorf("group %q: %w: %q is itself linked", gs.Name, timeline.ErrInvalidLink, gs.LinkedTo)
	}
	if err := g.LinkTo(master); err != nil {
		return fmt.Errorf("group %q: %w", gs.Name, err)
	}
	return nil
}

// linkTarget is the master named by the group called name, if any.
func (l *loader) linkTarget(name string) string {
	for _, gs := range l.doc.Groups {
		if gs.Name == name {
			return gs.LinkedTo
		}
	}
	return ""
}

func (l *loader) addChild(parent *timeline.Group, cs childSpec) error {
	unit, err := timeline.ParseUnit(cs.At.Unit)
	if err != nil {
		return err
	}

	var node timeline.Node
	switch {
	case cs.Group != "" && cs.File != "":
		return fmt.Errorf("%w: child names both a group and a file", ErrInvalidTree)
	case cs.Group != "":
		g, ok := l.groups[cs.Group]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownGroup, cs.Group)
		}
		if l.placed[g] {
			return fmt.Errorf("%w: group %q is placed twice", ErrInvalidTree, cs.Group)
		}
		node = g
	case cs.File != "":
		n, err := l.fileNode(cs)
		if err != nil {
			return err
		}
		node = n
	default:
		return fmt.Errorf("%w: child names neither a group nor a file", ErrInvalidTree)
	}

	if !parent.Add(node, cs.At.Value, unit) {
		if _, isFile := node.(*filesource.Node); isFile {
			node.Destroy()
		}
		return fmt.Errorf("%w: %q cannot contain %q", ErrInvalidTree, parent.Name(), node.Name())
	}
	if g, ok := node.(*timeline.Group); ok {
		l.placed[g] = true
	}
	return nil
}

func (l *loader) fileNode(cs childSpec) (*filesource.Node, error) {
	var opts []filesource.SourceOption
	if cs.Frames != nil {
		opts = append(opts, filesource.WithFrames(*cs.Frames))
	}

	n, err := filesource.NewNode(l.env.Cache, cs.File, opts...)
	if err != nil {
		return nil, err
	}
	if cs.Name != "" {
		n.SetName(cs.Name)
	}
	if cs.Amplitude != nil {
		n.Source().SetAmplitude(*cs.Amplitude)
	}
	if err := l.apply(n, cs.Loop, cs.Duration); err != nil {
		n.Destroy()
		return nil, err
	}
	return n, nil
}

func (l *loader) apply(n timeline.Node, loop string, duration *int) error {
	mode, err := timeline.ParseLoopMode(loop)
	if err != nil {
		return err
	}
	n.SetLoop(mode)
	if duration != nil {
		n.SetDuration(*duration)
	}
	return nil
}

// cleanup releases what a failed load created.
func (l *loader) cleanup() {
	for _, g := range l.groups {
		g.Destroy()
	}
}
