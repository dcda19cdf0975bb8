package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ProtocolExt is the file extension LoadDir looks for.
const ProtocolExt = ".s2proto"

// UnknownBuildError is returned when no protocol is registered for a
// replay's base build.
type UnknownBuildError struct {
	Build uint32
}

func (e UnknownBuildError) Error() string {
	return fmt.Sprintf("replay: no protocol for base build %d", e.Build)
}

// Registry maps base builds to protocols. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	builds map[uint32]*Protocol
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builds: make(map[uint32]*Protocol)}
}

// Register adds p, replacing any protocol for the same build.
func (r *Registry) Register(p *Protocol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds[p.BaseBuild] = p
}

// Lookup returns the protocol for build.
func (r *Registry) Lookup(build uint32) (*Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.builds[build]
	if !ok {
		return nil, UnknownBuildError{Build: build}
	}
	return p, nil
}

// Builds returns the registered base builds in ascending order.
func (r *Registry) Builds() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.builds))
	for b := range r.builds {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// LoadDir registers every *.s2proto file in dir and returns how many were
// loaded. It stops at the first file that fails to load.
func (r *Registry) LoadDir(dir string) (int, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*"+ProtocolExt))
	if err != nil {
		return 0, err
	}
	slices.Sort(names)
	for i, name := range names {
		p, err := loadProtocolFile(name)
		if err != nil {
			return i, err
		}
		r.Register(p)
		Logger().Debug("loaded protocol", zap.String("file", name), zap.Uint32("build", p.BaseBuild))
	}
	return len(names), nil
}

func loadProtocolFile(name string) (*Protocol, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := LoadProtocol(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}
