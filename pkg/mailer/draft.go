package mailer

import (
	"context"
	"encoding/json"
	"errors"
)

// Draft is a message whose view has not been rendered yet.
// It survives a JSON round trip, so it can be stored and sent later by
// another process. View data comes back as generic JSON values.
type Draft struct {
	Options  *Options `json:"options"`
	View     string   `json:"view,omitempty"`
	ViewData any      `json:"view_data,omitempty"`
}

// SendDraft renders d's view (if any), applies defaults and delivers it.
// d is not modified.
func (m *Mailer) SendDraft(ctx context.Context, d Draft) (*Result, error) {
	opts := &Options{}
	if d.Options != nil {
		opts = d.Options.Clone()
	}

	if d.View != "" {
		data := d.ViewData
		if data == nil {
			data = map[string]any{}
		}
		html, err := m.render(ctx, d.View, data)
		if err != nil {
			return nil, err
		}
		opts.HTML = html
	}

	m.applyDefaults(opts)

	result, err := m.deliver(ctx, opts)
	if err != nil {
		if errors.Is(err, ErrTransportClosed) {
			return nil, err
		}
		return nil, errors.Join(ErrSendFailed, err)
	}
	return result, nil
}

type addressJSON struct {
	Address string  `json:"address"`
	Name    *string `json:"name,omitempty"`
}

// MarshalJSON keeps the difference between an empty and a missing name.
func (a Address) MarshalJSON() ([]byte, error) {
	out := addressJSON{Address: a.Address}
	if a.named {
		out.Name = &a.Name
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(data []byte) error {
	var in addressJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Address{Address: in.Address}
	if in.Name != nil {
		a.Name, a.named = *in.Name, true
	}
	return nil
}

// MarshalJSON encodes presence-only tags as null.
func (t Tags) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t))
	for k, v := range t {
		if _, ok := v.(struct{}); ok {
			v = nil
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores null tags as presence-only.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var in map[string]any
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in == nil {
		*t = nil
		return nil
	}
	out := make(Tags, len(in))
	for k, v := range in {
		if v == nil {
			v = struct{}{}
		}
		out[k] = v
	}
	*t = out
	return nil
}
