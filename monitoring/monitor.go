// Package monitoring serves the HTTP control surface that the external
// configuration panel talks to.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/lifecycle"
	"github.com/sarchlab/rebalance/monitoring/web"
	"github.com/sarchlab/rebalance/sim/id"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

// ErrComponentNotFound is returned for unregistered component names.
var ErrComponentNotFound = errors.New("component not found")

// Controller is the part of the coordinator the monitor drives. Every call is
// made on the frame loop.
type Controller interface {
	Status() lifecycle.Status
	Config() config.Config
	AssetNames() []string
	ApplyConfig(cfg config.Config)
	ForceUpdateConfig() int
	ResetDefaults()
	SetEnabled(enabled bool)
}

// Poster runs closures on the frame loop. A closure whose context ends before
// it starts must never run.
type Poster interface {
	PostAndWait(ctx context.Context, fn func()) error
}

// Monitor turns the running extension into a server that external tools
// can inspect and control.
type Monitor struct {
	ctrl    Controller
	poster  Poster
	log     *zap.Logger
	timeout time.Duration

	portNumber int
	server     *http.Server

	componentNames []string
	components     map[string]any

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor(ctrl Controller, poster Poster, log *zap.Logger) *Monitor {
	return &Monitor{
		ctrl:       ctrl,
		poster:     poster,
		log:        log.Named("monitor"),
		timeout:    5 * time.Second,
		components: make(map[string]any),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.log.Warn("port number not allowed, using a random port instead",
			zap.Int("port", portNumber))

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithTimeout sets how long a request waits for the frame loop.
func (m *Monitor) WithTimeout(d time.Duration) *Monitor {
	m.timeout = d
	return m
}

// RegisterComponent exposes c under name for inspection.
func (m *Monitor) RegisterComponent(name string, c any) {
	if _, ok := m.components[name]; !ok {
		m.componentNames = append(m.componentNames, name)
	}

	m.components[name] = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the monitor's routes.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", m.status).Methods(http.MethodGet)
	api.HandleFunc("/config", m.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/assets", m.assets).Methods(http.MethodGet)
	api.HandleFunc("/apply", m.apply).Methods(http.MethodPost)
	api.HandleFunc("/force", m.force).Methods(http.MethodPost)
	api.HandleFunc("/reset", m.reset).Methods(http.MethodPost)
	api.HandleFunc("/enable/{on}", m.enable).Methods(http.MethodPost)
	api.HandleFunc("/list_components", m.listComponents).Methods(http.MethodGet)
	api.HandleFunc("/component/{name}", m.listComponentDetails).
		Methods(http.MethodGet)
	api.HandleFunc("/field/{json}", m.listFieldValue).Methods(http.MethodGet)
	api.HandleFunc("/progress", m.listProgressBars).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", m.collectProfile).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the monitor's
// address.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("monitor listen: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("monitor stopped", zap.Error(err))
		}
	}()

	m.log.Info("monitoring", zap.String("url", url))

	return url, nil
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// onFrame runs fn on the frame loop and reports a timeout to the client.
func (m *Monitor) onFrame(w http.ResponseWriter, r *http.Request, fn func()) bool {
	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	defer cancel()

	if err := m.poster.PostAndWait(ctx, fn); err != nil {
		m.fail(w, http.StatusServiceUnavailable, err)
		return false
	}

	return true
}

func (m *Monitor) status(w http.ResponseWriter, r *http.Request) {
	var s lifecycle.Status

	if m.onFrame(w, r, func() { s = m.ctrl.Status() }) {
		m.writeJSON(w, s)
	}
}

func (m *Monitor) getConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config

	if !m.onFrame(w, r, func() { cfg = m.ctrl.Config() }) {
		return
	}

	data, err := config.Encode(cfg)
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	m.write(w, data)
}

func (m *Monitor) assets(w http.ResponseWriter, r *http.Request) {
	var names []string

	if m.onFrame(w, r, func() { names = m.ctrl.AssetNames() }) {
		m.writeJSON(w, names)
	}
}

func (m *Monitor) apply(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	if _, err = config.Decode(data); err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	var s lifecycle.Status

	ok := m.onFrame(w, r, func() {
		var cfg config.Config

		cfg, err = config.Merge(m.ctrl.Config(), data)
		if err != nil {
			return
		}

		m.ctrl.ApplyConfig(cfg)
		s = m.ctrl.Status()
	})
	if !ok {
		return
	}

	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	m.log.Info("configuration applied from monitor")
	m.writeJSON(w, s)
}

type forceRsp struct {
	Applied int `json:"applied"`
}

func (m *Monitor) force(w http.ResponseWriter, r *http.Request) {
	var n int

	if m.onFrame(w, r, func() { n = m.ctrl.ForceUpdateConfig() }) {
		m.writeJSON(w, forceRsp{Applied: n})
	}
}

func (m *Monitor) reset(w http.ResponseWriter, r *http.Request) {
	var s lifecycle.Status

	ok := m.onFrame(w, r, func() {
		m.ctrl.ResetDefaults()
		s = m.ctrl.Status()
	})
	if ok {
		m.writeJSON(w, s)
	}
}

func (m *Monitor) enable(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(mux.Vars(r)["on"])
	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	var s lifecycle.Status

	ok := m.onFrame(w, r, func() {
		m.ctrl.SetEnabled(on)
		s = m.ctrl.Status()
	})
	if ok {
		m.writeJSON(w, s)
	}
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.componentNames)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	m.serialize(w, r, mux.Vars(r)["name"], nil)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	m.serialize(w, r, req.CompName, strings.Split(req.FieldName, "."))
}

func (m *Monitor) serialize(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	entry []string,
) {
	component, ok := m.components[name]
	if !ok {
		m.fail(w, http.StatusNotFound,
			fmt.Errorf("%w: %s", ErrComponentNotFound, name))

		return
	}

	buf := bytes.NewBuffer(nil)

	var err error

	posted := m.onFrame(w, r, func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		if entry != nil {
			if err = serializer.SetEntryPoint(entry); err != nil {
				return
			}
		}

		err = serializer.Serialize(buf)
	})
	if !posted {
		return
	}

	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, buf.Bytes())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("seconds"); s != "" {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil || secs <= 0 || secs > 30 {
			m.fail(w, http.StatusBadRequest,
				fmt.Errorf("invalid profile duration %q", s))

			return
		}

		duration = time.Duration(secs * float64(time.Second))
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		m.fail(w, http.StatusConflict, err)
		return
	}

	select {
	case <-time.After(duration):
	case <-r.Context().Done():
	}

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	m.write(w, data)
}

func (m *Monitor) write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		m.log.Debug("cannot write response", zap.Error(err))
	}
}

func (m *Monitor) fail(w http.ResponseWriter, code int, err error) {
	m.log.Warn("request failed", zap.Int("code", code), zap.Error(err))
	http.Error(w, err.Error(), code)
}
