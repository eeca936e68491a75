package avs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/ebitengine/purego"
)

// maxErrorMessageLength bounds the message kept for GetLastError. Hosts show
// the string verbatim in their UI, so anything longer is noise.
const maxErrorMessageLength = 300

const fallbackErrorMessage = "unknown AviSynth C API loading error"

type (
	checkVersionFn func(env uintptr, version int32) int32
	atExitFn       func(env uintptr, callback uintptr, userData uintptr)
	envPropertyFn  func(env uintptr, prop int32) uintptr
)

// loader owns the one library handle and function table this process may
// hold. Its fields are only written inside load and unload, which are only
// entered on the 0->1 and 1->0 reference-count transitions; refs is the sole
// synchronization point (see GetAPI).
type loader struct {
	refs        atomic.Int64
	initialized atomic.Bool

	handle         uintptr
	api            API
	checkVersion   checkVersionFn
	atExit         atExitFn
	getEnvProperty envPropertyFn
}

var (
	instance   loader
	currentAPI atomic.Pointer[API]

	errMu     sync.Mutex
	lastError string

	pathMu  sync.Mutex
	libPath string
)

// Indirection over the platform shim and the purego binds so tests can stand
// in a fake host library without dlopen.
var (
	openLibrary   = platformOpenLibrary
	resolveSymbol = platformResolveSymbol
	closeLibrary  = platformCloseLibrary

	bindCheckVersion = func(addr uintptr) checkVersionFn {
		var fn checkVersionFn
		purego.RegisterFunc(&fn, addr)
		return fn
	}
	bindAtExit = func(addr uintptr) atExitFn {
		var fn atExitFn
		purego.RegisterFunc(&fn, addr)
		return fn
	}
	bindEnvProperty = func(addr uintptr) envPropertyFn {
		var fn envPropertyFn
		purego.RegisterFunc(&fn, addr)
		return fn
	}
)

var (
	teardownOnce sync.Once
	teardownPtr  uintptr
)

// teardownCallbackPointer returns the C-callable address of teardownCallback.
// Created once: purego callback slots are a finite process-wide resource.
func teardownCallbackPointer() uintptr {
	teardownOnce.Do(func() {
		teardownPtr = purego.NewCallback(teardownCallback)
	})
	return teardownPtr
}

// GetAPI loads the AviSynth C API on first use and returns the shared
// function table. It must be called from the plugin's init entry point with
// the AVS_ScriptEnvironment handle the host passed in. requiredVersion and
// requiredBugfix are the minimum host interface version the plugin can work
// with; requiredNames lists the entry points the plugin cannot operate
// without (for example "avs_get_frame"). Every other known entry point is
// resolved best-effort and must be null-checked via API.Has before use.
//
// Callers after the first share the already-loaded table, but their version
// requirement is re-checked: a stricter plugin unloads a table that satisfied
// an earlier, laxer one. On failure the error text is also retrievable
// through GetLastError, for returning to the host.
func GetAPI(env uintptr, requiredVersion, requiredBugfix int, requiredNames ...string) (*API, error) {
	if instance.refs.Add(1) == 1 {
		if err := instance.load(env, requiredVersion, requiredBugfix, requiredNames); err != nil {
			instance.refs.Add(-1)
			currentAPI.Store(nil)
			return nil, err
		}
	} else {
		if !instance.initialized.Load() {
			// Another first caller is still inside load, or its load failed
			// and the count has not settled yet. Back off rather than wait.
			releaseRef()
			return nil, failf("AviSynth C API load already in progress or previously failed")
		}
		// The table satisfied whoever loaded it; it must also satisfy us.
		if err := instance.negotiateVersion(env, requiredVersion, requiredBugfix); err != nil {
			instance.refs.Store(0)
			instance.unload()
			return nil, err
		}
	}

	api := &instance.api
	currentAPI.Store(api)
	return api, nil
}

// CurrentAPI returns the table published by the most recent successful GetAPI
// call, or nil when the library is not loaded.
func CurrentAPI() *API {
	return currentAPI.Load()
}

// GetLastError returns the most recent load failure description. The message
// is overwritten by the next failing call on any goroutine; a fixed fallback
// is returned when nothing was ever recorded.
func GetLastError() string {
	errMu.Lock()
	defer errMu.Unlock()
	if lastError == "" {
		return fallbackErrorMessage
	}
	return lastError
}

// IsInitialized reports whether the AviSynth library is currently loaded.
func IsInitialized() bool {
	return instance.initialized.Load()
}

// SetSharedLibraryPath overrides the platform default library name
// (avisynth.dll, libavisynth.so, libavisynth.dylib) for the next load.
func SetSharedLibraryPath(path string) error {
	if instance.refs.Load() > 0 {
		return fmt.Errorf("cannot change library path after the AviSynth API is loaded")
	}
	pathMu.Lock()
	defer pathMu.Unlock()
	libPath = path
	return nil
}

func sharedLibraryPath() string {
	pathMu.Lock()
	defer pathMu.Unlock()
	if libPath != "" {
		return libPath
	}
	return defaultLibraryName()
}

// load runs the full load transaction. Only the goroutine that observed the
// 0->1 reference transition may call it.
func (l *loader) load(env uintptr, requiredVersion, requiredBugfix int, requiredNames []string) error {
	path := sharedLibraryPath()
	handle, err := openLibrary(path)
	if err != nil || handle == 0 {
		return failf("failed to load AviSynth library (%s), is AviSynth+ installed correctly?", path)
	}
	l.handle = handle

	if err := l.resolveBootstrap(); err != nil {
		l.unload()
		return err
	}

	if err := l.negotiateVersion(env, requiredVersion, requiredBugfix); err != nil {
		l.unload()
		return err
	}

	for _, name := range requiredNames {
		slot, ok := apiSymbols[name]
		if !ok {
			l.unload()
			return failf("internal error: unknown function requested as required: %s", name)
		}
		if err := l.resolveInto(slot(&l.api), name, true); err != nil {
			l.unload()
			return err
		}
	}

	// Fill every slot not already resolved above. A missing optional entry
	// point leaves its slot at 0 and is not an error.
	for name, slot := range apiSymbols {
		p := slot(&l.api)
		if *p == 0 {
			_ = l.resolveInto(p, name, false)
		}
	}

	l.atExit(env, teardownCallbackPointer(), 0)

	l.initialized.Store(true)
	clearLastError()
	return nil
}

func (l *loader) resolveBootstrap() error {
	for _, name := range []string{symCheckVersion, symAtExit} {
		if err := l.resolveInto(apiSymbols[name](&l.api), name, true); err != nil {
			return err
		}
	}
	_ = l.resolveInto(apiSymbols[symGetEnvProperty](&l.api), symGetEnvProperty, false)

	l.checkVersion = bindCheckVersion(l.api.CheckVersion)
	l.atExit = bindAtExit(l.api.AtExit)
	if l.api.GetEnvProperty != 0 {
		l.getEnvProperty = bindEnvProperty(l.api.GetEnvProperty)
	}
	return nil
}

func (l *loader) resolveInto(slot *uintptr, name string, required bool) error {
	addr, err := resolveSymbol(l.handle, name)
	if err != nil || addr == 0 {
		*slot = 0
		if required {
			return failf("failed to load required function: %s", name)
		}
		return nil
	}
	*slot = addr
	return nil
}

// negotiateVersion checks the loaded host against a plugin's minimum
// interface requirement. The property getter gives exact major and bugfix
// numbers; hosts older than interface V8 only expose avs_check_version, which
// answers yes/no for a major version and leaves the bugfix unverifiable.
func (l *loader) negotiateVersion(env uintptr, requiredVersion, requiredBugfix int) error {
	if l.getEnvProperty != nil {
		hostVersion := int(l.getEnvProperty(env, int32(EnvPropertyInterfaceVersion)))
		hostBugfix := int(l.getEnvProperty(env, int32(EnvPropertyInterfaceBugfix)))
		if versionSatisfies(hostVersion, hostBugfix, requiredVersion, requiredBugfix) {
			return nil
		}
		return failf("AviSynth C API error: plugin requires interface >= %d.%d, but found %d.%d",
			requiredVersion, requiredBugfix, hostVersion, hostBugfix)
	}

	if l.checkVersion(env, int32(requiredVersion)) == 0 {
		return nil
	}
	return failf("AviSynth C API error: plugin requires interface >= %d.%d, but the installed AviSynth+ version is too old",
		requiredVersion, requiredBugfix)
}

// versionSatisfies reports whether a host interface version meets a plugin's
// minimum. The bugfix number only participates when the majors are equal.
func versionSatisfies(hostVersion, hostBugfix, requiredVersion, requiredBugfix int) bool {
	if hostVersion != requiredVersion {
		return hostVersion > requiredVersion
	}
	return hostBugfix >= requiredBugfix
}

// unload clears the handle and zeroes the table in one transaction; after it
// returns the loader is bit-for-bit back in its never-loaded state.
func (l *loader) unload() {
	if l.handle != 0 {
		_ = closeLibrary(l.handle)
		l.handle = 0
	}
	l.api = API{}
	l.checkVersion = nil
	l.atExit = nil
	l.getEnvProperty = nil
	l.initialized.Store(false)
	currentAPI.Store(nil)
}

// teardownCallback is registered with the host via avs_at_exit and invoked
// once per environment the host destroys. The environment handle is unused:
// the reference count is process-global, not per environment.
func teardownCallback(userData, env uintptr) uintptr {
	releaseRef()
	return 0
}

// releaseRef drops one reference and unloads on the 1->0 transition. The
// floor at zero keeps concurrent teardowns safe after a stricter caller
// already forced an unload and reset the count.
func releaseRef() {
	for {
		n := instance.refs.Load()
		if n == 0 {
			return
		}
		if instance.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				instance.unload()
			}
			return
		}
	}
}

func failf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > maxErrorMessageLength {
		// Back up to a rune boundary; library paths in messages need not be
		// ASCII.
		cut := maxErrorMessageLength
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	errMu.Lock()
	lastError = msg
	errMu.Unlock()
	return errors.New(msg)
}

func clearLastError() {
	errMu.Lock()
	lastError = ""
	errMu.Unlock()
}
