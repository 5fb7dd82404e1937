// SPDX-License-Identifier: EPL-2.0

package project

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ik5/audtl/filesource"
	"github.com/ik5/audtl/timeline"
	"gopkg.in/yaml.v3"
)

type Option func(*options)

type options struct {
	log *slog.Logger
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save writes root, every group below it and the masters of linked
// groups. Group names are made unique by suffixing ".2", ".3" and so on.
func Save(w io.Writer, root *timeline.Group, opts ...Option) error {
	s := &saver{
		options: newOptions(opts),
		names:   make(map[*timeline.Group]string),
		used:    make(map[string]bool),
	}

	doc := file{Version: Version, Root: s.visit(root)}
	if b := root.Beat(); b != nil {
		doc.Tempo = tempo{BPM: b.BPM(), PixelPerSample: b.PixelPerSample(), Divisions: b.Divisions()}
	}
	doc.Groups = s.specs

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return enc.Close()
}

// SaveFile writes the project next to path, syncs it and renames it into
// place. The temporary file is removed when any step fails.
func SaveFile(path string, root *timeline.Group, opts ...Option) error {
	var buf bytes.Buffer
	if err := Save(&buf, root, opts...); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := writeSynced(tmp, buf.Bytes()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type saver struct {
	options

	names map[*timeline.Group]string
	used  map[string]bool
	specs []groupSpec
}

func (s *saver) name(g *timeline.Group) string {
	base := g.Name()
	if base == "" {
		base = "group"
	}

	name := base
	for i := 2; s.used[name]; i++ {
		name = fmt.Sprintf("%s.%d", base, i)
	}
	s.used[name] = true
	s.names[g] = name
	return name
}

func (s *saver) visit(g *timeline.Group) string {
	if name, ok := s.names[g]; ok {
		return name
	}

	name := s.name(g)
	gs := groupSpec{Name: name, Loop: loopName(g.Loop())}
	if d, ok := g.AssignedDuration(); ok {
		gs.Duration = &d
	}

	idx := len(s.specs)
	s.specs = append(s.specs, gs)

	if m := g.Master(); m != nil {
		s.specs[idx].LinkedTo = s.visit(m)
		return name
	}

	for _, c := range g.Children() {
		if cs, ok := s.child(c); ok {
			s.specs[idx].Children = append(s.specs[idx].Children, cs)
		}
	}
	return name
}

func (s *saver) child(c timeline.Child) (childSpec, bool) {
	cs := childSpec{
		At:   at{Value: c.At.Value(), Unit: c.At.Unit().String()},
		Loop: loopName(c.Node.Loop()),
	}
	if d, ok := assigned(c.Node); ok {
		cs.Duration = &d
	}

	switch n := c.Node.(type) {
	case *filesource.Node:
		cs.File = n.Path()
		if n.Name() != filepath.Base(cs.File) {
			cs.Name = n.Name()
		}
		if src := n.Source(); src != nil {
			if frames, ok := src.RequestedFrames(); ok {
				cs.Frames = &frames
			}
			if a := src.Amplitude(); a != 1 {
				cs.Amplitude = &a
			}
		}
	case *timeline.Group:
		cs.Group = s.visit(n)
		cs.Loop, cs.Duration = "", nil
	default:
		s.log.Warn("node not saved", "name", c.Node.Name(), "type", fmt.Sprintf("%T", c.Node))
		return childSpec{}, false
	}
	return cs, true
}

func assigned(n timeline.Node) (int, bool) {
	if a, ok := n.(interface{ AssignedDuration() (int, bool) }); ok {
		return a.AssignedDuration()
	}
	return 0, false
}

func loopName(m timeline.LoopMode) string {
	if m == timeline.LoopNone {
		return ""
	}
	return m.String()
}
