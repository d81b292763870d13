// Package dashboard is the event loop of the explorer. It owns the hub and the panels
// and serializes every upload, control change and snapshot read behind one lock, so
// the single-threaded hub and panels can be driven from concurrent HTTP handlers and
// the file watcher.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hcpdash/adapters/tabular"
	"hcpdash/domain/core"
	"hcpdash/domain/dataset"
	"hcpdash/domain/view"
	apperrors "hcpdash/internal/errors"
	"hcpdash/internal/hub"
	"hcpdash/internal/panel"
	"hcpdash/ports"
)

// Event types pushed through a Notifier
const (
	EventDataset    = "dataset"
	EventPanelError = "panel_error"
	EventPanelState = "panel_state"
)

// Notifier receives dashboard events for push delivery
type Notifier interface {
	Notify(eventType, panelID string, data interface{})
}

// DatasetInfo describes the published snapshot
type DatasetInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}

// PanelError is one panel's failure to take a dataset
type PanelError struct {
	PanelID string `json:"panel_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result reports the outcome of one upload
type Result struct {
	Upload      ports.UploadRecord `json:"upload"`
	Dataset     *DatasetInfo       `json:"dataset,omitempty"`
	PanelErrors []PanelError       `json:"panel_errors,omitempty"`
}

// Dashboard wires the hub, the panels and the upload history together
type Dashboard struct {
	mu       sync.Mutex
	hub      *hub.Hub
	panels   []panel.Panel
	attached map[string]bool
	uploads  ports.UploadRepository
	notifier Notifier
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithUploads records every upload attempt in repo
func WithUploads(repo ports.UploadRepository) Option {
	return func(d *Dashboard) { d.uploads = repo }
}

// WithNotifier pushes dataset and panel error events to n
func WithNotifier(n Notifier) Option {
	return func(d *Dashboard) { d.notifier = n }
}

// New registers panels with h in the given order
func New(h *hub.Hub, panels []panel.Panel, opts ...Option) *Dashboard {
	d := &Dashboard{
		hub:      h,
		panels:   panels,
		attached: make(map[string]bool, len(panels)),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, p := range panels {
		h.Register(p)
		d.attached[p.ID()] = true
	}
	return d
}

// Load parses an uploaded file and publishes it. A file that cannot be parsed is
// recorded as rejected and the current dataset stays active.
func (d *Dashboard) Load(ctx context.Context, name string, size int64, src io.Reader) (*Result, error) {
	rec := ports.UploadRecord{
		ID:        core.NewID().String(),
		Filename:  filepath.Base(name),
		SizeBytes: size,
		CreatedAt: time.Now(),
	}

	reader, err := tabular.NewDataReader(name)
	if err == nil {
		var ds *dataset.Dataset
		ds, err = reader.Read(src)
		if err == nil {
			return d.publish(ctx, rec, ds), nil
		}
	}

	log.Printf("[Upload] Rejected %s: %v", rec.Filename, err)
	rec.Status = ports.UploadRejected
	rec.Error = err.Error()
	d.record(ctx, rec)
	return &Result{Upload: rec}, err
}

// LoadFile loads a dataset from disk
func (d *Dashboard) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return d.Load(ctx, path, size, f)
}

func (d *Dashboard) publish(ctx context.Context, rec ports.UploadRecord, ds *dataset.Dataset) *Result {
	d.mu.Lock()
	err := d.hub.Publish(ds)
	d.mu.Unlock()

	info := describe(ds)
	res := &Result{Dataset: &info}
	for _, f := range hub.Failures(err) {
		res.PanelErrors = append(res.PanelErrors, PanelError{
			PanelID: f.PanelID,
			Code:    apperrors.GetCode(f.Err),
			Message: f.Err.Error(),
		})
	}

	rec.Status = ports.UploadPublished
	rec.Rows = ds.Len()
	rec.Columns = ds.Columns()
	rec.PanelErrors = len(res.PanelErrors)
	res.Upload = rec
	d.record(ctx, rec)

	log.Printf("[Upload] Published %s (%d rows, %d columns, %d panel error(s))",
		rec.Filename, rec.Rows, len(rec.Columns), rec.PanelErrors)

	d.notify(EventDataset, "", info)
	for _, pe := range res.PanelErrors {
		d.notify(EventPanelError, pe.PanelID, pe)
	}
	return res
}

func (d *Dashboard) record(ctx context.Context, rec ports.UploadRecord) {
	if d.uploads == nil {
		return
	}
	if err := d.uploads.Record(ctx, rec); err != nil {
		log.Printf("[Upload] Failed to record upload %s: %v", rec.ID, err)
	}
}

func (d *Dashboard) notify(eventType, panelID string, data interface{}) {
	if d.notifier != nil {
		d.notifier.Notify(eventType, panelID, data)
	}
}

func describe(ds *dataset.Dataset) DatasetInfo {
	return DatasetInfo{
		ID:       ds.ID.String(),
		Source:   filepath.Base(ds.Source),
		Rows:     ds.Len(),
		Columns:  ds.Columns(),
		LoadedAt: ds.LoadedAt,
	}
}

// Dataset describes the current snapshot, false before the first publish
func (d *Dashboard) Dataset() (DatasetInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds := d.hub.Dataset()
	if ds == nil {
		return DatasetInfo{}, false
	}
	return describe(ds), true
}

// Control applies control values to one panel and returns its new state
func (d *Dashboard) Control(panelID string, updates map[string]string) (view.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(panelID)
	if err != nil {
		return view.State{}, err
	}
	if err := p.Apply(updates); err != nil {
		return d.stateOf(p), err
	}
	st := d.stateOf(p)
	d.notify(EventPanelState, p.ID(), st)
	return st, nil
}

// Detach unregisters a panel so later uploads skip it
func (d *Dashboard) Detach(panelID string) (view.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(panelID)
	if err != nil {
		return view.State{}, err
	}
	d.hub.Unregister(p)
	d.attached[p.ID()] = false
	return d.stateOf(p), nil
}

// Attach registers a panel again and replays the current dataset to it. A panel
// failure is reported through the panel state and the notifier.
func (d *Dashboard) Attach(panelID string) (view.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(panelID)
	if err != nil {
		return view.State{}, err
	}
	if !d.hub.IsRegistered(p) {
		d.hub.Register(p)
		d.attached[p.ID()] = true
		if ds := d.hub.Dataset(); ds != nil {
			if err := p.OnData(ds); err != nil {
				log.Printf("[Hub] Panel %s failed on replay of %s: %v", p.ID(), ds.Source, err)
				d.notify(EventPanelError, p.ID(), PanelError{
					PanelID: p.ID(),
					Code:    apperrors.GetCode(err),
					Message: err.Error(),
				})
			}
		}
	}
	return d.stateOf(p), nil
}

// Panels returns every panel state in registration order
func (d *Dashboard) Panels() []view.State {
	d.mu.Lock()
	defer d.mu.Unlock()

	states := make([]view.State, len(d.panels))
	for i, p := range d.panels {
		states[i] = d.stateOf(p)
	}
	return states
}

// Panel returns one panel state
func (d *Dashboard) Panel(id string) (view.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(id)
	if err != nil {
		return view.State{}, err
	}
	return d.stateOf(p), nil
}

// Help returns a panel's markdown description
func (d *Dashboard) Help(id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(id)
	if err != nil {
		return "", err
	}
	return p.Help(), nil
}

// Uploads returns the upload history, newest first
func (d *Dashboard) Uploads(ctx context.Context, limit int) ([]ports.UploadRecord, error) {
	if d.uploads == nil {
		return nil, nil
	}
	return d.uploads.List(ctx, limit)
}

func (d *Dashboard) lookup(id string) (panel.Panel, error) {
	want, err := core.ParsePanelID(id)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	for _, p := range d.panels {
		if p.ID() == want.String() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrPanelNotFound, id)
}

func (d *Dashboard) stateOf(p panel.Panel) view.State {
	st := p.State()
	st.Attached = d.attached[p.ID()]
	return st
}

var _ ports.ReaderPort = (*Dashboard)(nil)
