package svgnode

import "fmt"

// Sink receives the markup of a root node each time the scene changes.
type Sink interface {
	// Attach is called once, when the root is created.
	Attach(root *Node) error
	// Notify is called with the full markup of the root, once
	// per mutation reaching it.
	Notify(markup string) error
}

// NewSVG creates a root svg node displayed by sink, which may be nil.
// The root takes the default size of the arena configuration, unless
// opts say otherwise. If the arena sync is enabled, the sink
// is notified with the initial markup.
func (a *Arena) NewSVG(sink Sink, opts ...Option) (*Node, error) {
	all := append([]Option{With("width", a.cfg.Width), With("height", a.cfg.Height)}, opts...)
	root, err := a.New(KindSVG, all...)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		return root, nil
	}
	if err := sink.Attach(root); err != nil {
		a.drop(root)
		return nil, fmt.Errorf("attach sink: %w", err)
	}
	root.sink = sink
	if a.sync.Enabled() && root.sync {
		if err := root.notifySink(); err != nil {
			return root, err
		}
	}
	return root, nil
}

// Sink returns the sink attached to n, or nil.
func (n *Node) Sink() Sink { return n.sink }

// Refresh sends the current markup of n to its sink, whatever
// the sync settings.
func (n *Node) Refresh() error {
	if n.released {
		return ErrReleased
	}
	if n.sink == nil {
		return nil
	}
	return n.notifySink()
}

func (n *Node) notifySink() error {
	markup, err := n.Markup()
	if err != nil {
		return err
	}
	return n.sink.Notify(markup)
}
