package core

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/synadia-labs/s2proto-go/protocol"
	"github.com/synadia-labs/s2proto-go/replay"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
	"github.com/synadia-labs/s2proto-go/schema"
)

// Output formats.
const (
	FormatText = "text"
	FormatDiag = "diag"
	FormatCBOR = "cbor"
)

// Options selects what Run prints and how.
type Options struct {
	Protocols string
	Format    string

	Raw           bool
	Header        bool
	Details       bool
	InitData      bool
	GameEvents    bool
	MessageEvents bool
	TrackerEvents bool
	Attributes    bool

	Logger *zap.Logger
}

func (o Options) selected() bool {
	return o.Raw || o.Header || o.Details || o.InitData || o.GameEvents ||
		o.MessageEvents || o.TrackerEvents || o.Attributes
}

// Run opens the replay at path, resolving its protocol from opts.Protocols,
// and writes the selected sections to w.
func Run(w io.Writer, path string, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := replay.NewRegistry()
	if opts.Protocols != "" {
		n, err := reg.LoadDir(opts.Protocols)
		if err != nil {
			return fmt.Errorf("load protocols: %w", err)
		}
		log.Info("loaded protocols", zap.String("dir", opts.Protocols), zap.Int("count", n))
	}

	r, err := replay.Open(path, reg, schema.WithLogger(log))
	if err != nil {
		return err
	}
	defer r.Close()
	return Write(w, r, opts)
}

// Write prints the sections of r selected by opts. With no section
// selected only the header is printed.
func Write(w io.Writer, r *replay.Replay, opts Options) error {
	if !opts.selected() {
		opts.Header = true
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, format: opts.Format}
	if err := write(p, r, opts, log); err != nil {
		bw.Flush()
		return err
	}
	return bw.Flush()
}

func write(p *printer, r *replay.Replay, opts Options, log *zap.Logger) error {
	if opts.Raw {
		diag, _, err := s2proto.DiagBytes(r.RawHeader())
		if err != nil {
			return fmt.Errorf("raw header: %w", err)
		}
		if _, err := fmt.Fprintln(p.w, diag); err != nil {
			return err
		}
	}
	if opts.Header {
		if err := p.print(headerRecord(r.Header())); err != nil {
			return err
		}
	}
	if _, err := r.Protocol(); err != nil {
		if needsProtocol(opts) {
			return err
		}
		log.Debug("sections skipped", zap.Error(err))
	}
	if opts.Details {
		v, err := r.Details()
		if err != nil {
			return err
		}
		if err := p.print(v); err != nil {
			return err
		}
	}
	if opts.InitData {
		v, err := r.InitData()
		if err != nil {
			return err
		}
		if err := p.print(v); err != nil {
			return err
		}
	}
	streams := []struct {
		on  bool
		seq func() iter.Seq2[schema.Event, error]
	}{
		{opts.GameEvents, r.GameEvents},
		{opts.MessageEvents, r.MessageEvents},
		{opts.TrackerEvents, r.TrackerEvents},
	}
	for _, s := range streams {
		if !s.on {
			continue
		}
		for ev, err := range s.seq() {
			if err != nil {
				return err
			}
			if err := p.print(eventRecord(ev)); err != nil {
				return err
			}
		}
	}
	if opts.Attributes {
		a, err := r.Attributes()
		if err != nil {
			return err
		}
		if err := p.print(attributesRecord(a)); err != nil {
			return err
		}
	}
	return nil
}

func needsProtocol(o Options) bool {
	return o.Details || o.InitData || o.GameEvents || o.MessageEvents || o.TrackerEvents
}

type printer struct {
	w      io.Writer
	format string
}

func (p *printer) print(v schema.Value) error {
	switch p.format {
	case "", FormatText:
		if err := schema.Dump(p.w, v); err != nil {
			return err
		}
		_, err := io.WriteString(p.w, "\n")
		return err
	case FormatDiag, FormatCBOR:
		data, err := schema.MarshalValue(v)
		if err != nil {
			return err
		}
		if p.format == FormatCBOR {
			_, err = p.w.Write(data)
			return err
		}
		diag, err := schema.Diagnose(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, diag)
		return err
	}
	return fmt.Errorf("unknown format %q", p.format)
}

func headerRecord(h *protocol.SHeader) *schema.Record {
	v := schema.NewRecord(6)
	v.Set("m_flags", int64(h.Version.Flags))
	v.Set("m_major", int64(h.Version.Major))
	v.Set("m_minor", int64(h.Version.Minor))
	v.Set("m_revision", int64(h.Version.Revision))
	v.Set("m_build", int64(h.Version.Build))
	v.Set("m_baseBuild", int64(h.Version.BaseBuild))

	out := schema.NewRecord(9)
	out.Set("m_signature", h.Signature)
	out.Set("m_version", v)
	out.Set("m_type", int64(h.Type))
	out.Set("m_elapsedGameLoops", int64(h.ElapsedGameLoops))
	out.Set("m_useScaledTime", h.UseScaledTime)
	out.Set("m_ngdpRootKey", md5Value(h.NGDPRootKey))
	out.Set("m_dataBuildNum", int64(h.DataBuildNum))
	out.Set("m_replayCompatibilityHash", md5Value(h.ReplayCompatibilityHash))
	out.Set("m_ngdpRootKeyIsDevData", h.NGDPRootKeyIsDevData)
	return out
}

func md5Value(d *protocol.Smd5) schema.Value {
	if d == nil {
		return nil
	}
	return d.Data
}

func eventRecord(ev schema.Event) *schema.Record {
	out := schema.NewRecord(6)
	out.Set("_event", []byte(ev.Name))
	out.Set("_eventid", ev.ID)
	out.Set("_gameloop", ev.GameLoop)
	if ev.HasUserID {
		out.Set("_userid", ev.UserID)
	}
	out.Set("_bits", int64(ev.Bits))
	out.Set("fields", ev.Fields)
	return out
}

func attributesRecord(a *replay.Attributes) *schema.Record {
	scopes := schema.NewRecord(len(a.Scopes))
	for _, scope := range slices.Sorted(maps.Keys(a.Scopes)) {
		ids := a.Scopes[scope]
		rec := schema.NewRecord(len(ids))
		for _, id := range slices.Sorted(maps.Keys(ids)) {
			vals := make([]schema.Value, len(ids[id]))
			for i, attr := range ids[id] {
				vals[i] = attr.Value
			}
			rec.Set(strconv.FormatUint(uint64(id), 10), vals)
		}
		scopes.Set(strconv.FormatUint(uint64(scope), 10), rec)
	}
	out := schema.NewRecord(4)
	out.Set("source", int64(a.Source))
	out.Set("mapNamespace", int64(a.MapNamespace))
	out.Set("count", int64(a.Count))
	out.Set("scopes", scopes)
	return out
}
