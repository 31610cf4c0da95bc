package tmxfile

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
)

// attrReader parses attribute values of one element. The first failure is kept in err
// and later calls become no-ops, so an element can be read in one go and checked once.
type attrReader struct {
	element string
	err     errorsx.Error
}

func (r *attrReader) fail(name, value, reason string) {
	if r.err == nil {
		r.err = errorsx.Wrap(ErrMalformedDocument, "element", r.element, "attribute", name, "value", value, "reason", reason)
	}
}

func (r *attrReader) requiredInt(name, value string) int {
	if value == "" {
		r.fail(name, value, "missing required attribute")
		return 0
	}
	return r.optionalInt(name, value, 0)
}

func (r *attrReader) optionalInt(name, value string, def int) int {
	if value == "" || r.err != nil {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		r.fail(name, value, "not an integer")
		return def
	}
	return i
}

func (r *attrReader) optionalFloat(name, value string, def float64) float64 {
	if value == "" || r.err != nil {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(name, value, "not a number")
		return def
	}
	return f
}

func (r *attrReader) optionalBool(name, value string, def bool) bool {
	switch value {
	case "":
		return def
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	r.fail(name, value, "not a boolean")
	return def
}

func (r *attrReader) optionalColor(name, value string) *tmxcolor.Color {
	if value == "" || r.err != nil {
		return nil
	}
	c, err := tmxcolor.ParseHex(value)
	if err != nil {
		r.fail(name, value, "not a colour")
		return nil
	}
	return &c
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatFloat writes whole numbers without a fraction, as editors do for coordinates.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalFloat(f, def float64) string {
	if f == def {
		return ""
	}
	return formatFloat(f)
}

func formatVisible(visible bool) string {
	if visible {
		return ""
	}
	return "0"
}

func formatColor(c *tmxcolor.Color) string {
	if c == nil {
		return ""
	}
	return c.Hex()
}

// readProperties copies xp into store. Properties of unknown types are kept as strings.
func readProperties(logger *logpkg.Logger, store *properties.Store, xp *xmlProperties) errorsx.Error {
	if xp == nil {
		return nil
	}
	for _, p := range xp.Properties {
		raw := p.Value
		if raw == "" && strings.TrimSpace(p.Text) != "" {
			raw = p.Text
		}
		t, err := properties.ParseType(p.Type)
		if err != nil {
			logger.Warn("property %q has unknown type %q, keeping it as a string", p.Name, p.Type)
			t = properties.TypeString
		}
		err = store.SetRaw(p.Name, t, raw)
		if err != nil {
			return errorsx.Wrap(ErrMalformedDocument, "property", p.Name, "type", p.Type, "value", raw)
		}
	}
	return nil
}

func writeProperties(store *properties.Store) *xmlProperties {
	if store.Len() == 0 {
		return nil
	}
	xp := new(xmlProperties)
	store.Each(func(name string, value properties.Value) {
		p := &xmlProperty{Name: name}
		if value.Type() != properties.TypeString {
			p.Type = string(value.Type())
		}
		raw := value.Raw()
		if strings.Contains(raw, "\n") {
			p.Text = raw
		} else {
			p.Value = raw
		}
		xp.Properties = append(xp.Properties, p)
	})
	return xp
}
