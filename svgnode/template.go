package svgnode

import (
	"html"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{"
	endTag   = "}"
)

// rebuildTemplate resolves the {tag} and {attrs} placeholders of the
// kind form. Slot placeholders are left for Markup.
func (n *Node) rebuildTemplate() {
	n.template = fasttemplate.ExecuteFuncString(n.kind.Form, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		switch tag {
		case "tag":
			return io.WriteString(w, n.kind.Tag)
		case "attrs":
			return io.WriteString(w, n.attrString())
		default:
			return io.WriteString(w, startTag+tag+endTag)
		}
	})
}

// attrString lists the attribute slots with a value, in slot order.
// Underscores in attribute names are written as dashes.
func (n *Node) attrString() string {
	var chunks []string
	for i, def := range n.kind.slots {
		if !def.Meta.IsAttr() || n.values[i] == nil {
			continue
		}
		placeholder := startTag + def.Name + endTag
		switch {
		case def.Meta.AttrName != "":
			chunks = append(chunks, def.Meta.AttrName+`="`+placeholder+`"`)
		case def.Meta.Raw:
			chunks = append(chunks, attrName(def.Name)+"="+placeholder)
		default:
			chunks = append(chunks, attrName(def.Name)+`="`+placeholder+`"`)
		}
	}
	return strings.Join(chunks, " ")
}

func attrName(slot string) string { return strings.ReplaceAll(slot, "_", "-") }

// Template returns the partially resolved markup skeleton of the node.
func (n *Node) Template() string { return n.template }

// Markup renders the node and its descendants. A placeholder
// naming no slot of the node fails with a *RenderError.
func (n *Node) Markup() (string, error) {
	if n.released {
		return "", ErrReleased
	}
	return fasttemplate.ExecuteFuncStringWithErr(n.template, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		if tag == "children" {
			chunks := make([]string, len(n.children))
			for i, c := range n.children {
				s, err := c.Markup()
				if err != nil {
					return 0, err
				}
				chunks[i] = s
			}
			return io.WriteString(w, strings.Join(chunks, "\n"))
		}
		i, ok := n.kind.index[tag]
		if !ok {
			return 0, &RenderError{Kind: n.kind.Name, Placeholder: tag}
		}
		s := formatValue(n.values[i])
		if !n.kind.slots[i].Meta.Raw {
			s = html.EscapeString(s)
		}
		return io.WriteString(w, s)
	})
}
