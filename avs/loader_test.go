package avs

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

// fakeHost simulates an AviSynth host library without touching the OS
// dynamic loader: symbol resolution hands out unique fake addresses and the
// bootstrap binds are replaced with Go closures over the fake's state.
type fakeHost struct {
	version           int
	bugfix            int
	hasEnvProperty    bool
	checkVersionFails bool
	openFails         bool
	missing           map[string]bool

	opens        int
	closes       int
	lastOpenPath string
	resolves     map[string]int
	atExitEnv    uintptr
	atExitCB     uintptr

	addrs    map[string]uintptr
	nextAddr uintptr
}

func newFakeHost(version, bugfix int) *fakeHost {
	return &fakeHost{
		version:        version,
		bugfix:         bugfix,
		hasEnvProperty: true,
		missing:        make(map[string]bool),
		resolves:       make(map[string]int),
		addrs:          make(map[string]uintptr),
		nextAddr:       0x1000,
	}
}

func (f *fakeHost) addr(name string) uintptr {
	if a, ok := f.addrs[name]; ok {
		return a
	}
	f.nextAddr += 8
	f.addrs[name] = f.nextAddr
	return f.nextAddr
}

// install wires the fake into the loader's platform and bind indirection and
// resets global loader state; both are restored on test cleanup.
func (f *fakeHost) install(t *testing.T) {
	t.Helper()
	resetLoaderState()

	prevOpen, prevResolve, prevClose := openLibrary, resolveSymbol, closeLibrary
	prevCheck, prevAtExit, prevProp := bindCheckVersion, bindAtExit, bindEnvProperty

	openLibrary = func(path string) (uintptr, error) {
		f.lastOpenPath = path
		if f.openFails {
			return 0, fmt.Errorf("open failed")
		}
		f.opens++
		return 0xBEEF, nil
	}
	resolveSymbol = func(handle uintptr, name string) (uintptr, error) {
		f.resolves[name]++
		if f.missing[name] {
			return 0, fmt.Errorf("symbol not found: %s", name)
		}
		if name == symGetEnvProperty && !f.hasEnvProperty {
			return 0, fmt.Errorf("symbol not found: %s", name)
		}
		return f.addr(name), nil
	}
	closeLibrary = func(handle uintptr) error {
		if handle != 0 {
			f.closes++
		}
		return nil
	}
	bindCheckVersion = func(addr uintptr) checkVersionFn {
		return func(env uintptr, version int32) int32 {
			if f.checkVersionFails || int(version) > f.version {
				return 1
			}
			return 0
		}
	}
	bindAtExit = func(addr uintptr) atExitFn {
		return func(env, callback, userData uintptr) {
			f.atExitEnv = env
			f.atExitCB = callback
		}
	}
	bindEnvProperty = func(addr uintptr) envPropertyFn {
		return func(env uintptr, prop int32) uintptr {
			switch EnvProperty(prop) {
			case EnvPropertyInterfaceVersion:
				return uintptr(f.version)
			case EnvPropertyInterfaceBugfix:
				return uintptr(f.bugfix)
			}
			return 0
		}
	}

	t.Cleanup(func() {
		openLibrary, resolveSymbol, closeLibrary = prevOpen, prevResolve, prevClose
		bindCheckVersion, bindAtExit, bindEnvProperty = prevCheck, prevAtExit, prevProp
		resetLoaderState()
	})
}

// resetLoaderState resets all global loader state for testing.
func resetLoaderState() {
	instance.refs.Store(0)
	instance.initialized.Store(false)
	instance.handle = 0
	instance.api = API{}
	instance.checkVersion = nil
	instance.atExit = nil
	instance.getEnvProperty = nil
	currentAPI.Store(nil)
	clearLastError()
	pathMu.Lock()
	libPath = ""
	pathMu.Unlock()
}

const testEnv = uintptr(0xE11)

func TestGetAPISuccess(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	api, err := GetAPI(testEnv, 10, 0, "avs_get_frame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api == nil {
		t.Fatal("expected non-nil API table")
	}
	if CurrentAPI() != api {
		t.Error("expected CurrentAPI to return the same table pointer")
	}
	if !IsInitialized() {
		t.Error("expected loader to be initialized")
	}
	if got := instance.refs.Load(); got != 1 {
		t.Errorf("expected refcount 1, got %d", got)
	}
	if api.GetFrame == 0 {
		t.Error("expected required avs_get_frame slot to be resolved")
	}
	if !api.Has("avs_get_frame") {
		t.Error("expected Has(avs_get_frame) to be true")
	}
	if host.atExitCB == 0 {
		t.Error("expected teardown callback to be registered via avs_at_exit")
	}
	if host.atExitEnv != testEnv {
		t.Errorf("expected at_exit to receive env %#x, got %#x", testEnv, host.atExitEnv)
	}
}

func TestGetAPIBestEffortFillsAllKnownSlots(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	api, err := GetAPI(testEnv, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range KnownSymbols() {
		if api.Func(name) == 0 {
			t.Errorf("expected slot for %s to be resolved", name)
		}
	}
}

func TestGetAPIOptionalSymbolMissing(t *testing.T) {
	host := newFakeHost(10, 0)
	host.missing["avs_bit_blt"] = true
	host.install(t)

	api, err := GetAPI(testEnv, 10, 0, "avs_get_frame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.BitBlt != 0 {
		t.Error("expected missing optional symbol to leave slot at 0")
	}
	if api.Has("avs_bit_blt") {
		t.Error("expected Has(avs_bit_blt) to be false")
	}
}

func TestGetAPIRefCountingAndRoundTrip(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	const n = 5
	var first *API
	for i := 0; i < n; i++ {
		api, err := GetAPI(testEnv, 10, 0)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if first == nil {
			first = api
		} else if api != first {
			t.Fatalf("call %d: table pointer changed", i)
		}
	}
	if got := instance.refs.Load(); got != n {
		t.Fatalf("expected refcount %d, got %d", n, got)
	}
	if host.opens != 1 {
		t.Errorf("expected a single physical load, got %d", host.opens)
	}

	for i := 0; i < n; i++ {
		teardownCallback(0, testEnv)
	}

	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount 0 after matching teardowns, got %d", got)
	}
	if host.closes != 1 {
		t.Errorf("expected a single physical unload, got %d", host.closes)
	}
	if instance.handle != 0 {
		t.Error("expected handle to be cleared")
	}
	if instance.api != (API{}) {
		t.Error("expected function table to be zeroed")
	}
	if IsInitialized() {
		t.Error("expected loader to be uninitialized")
	}
	if CurrentAPI() != nil {
		t.Error("expected shared accessor to be nil")
	}
}

func TestGetAPIDoesNotReResolveWhileLoaded(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	if _, err := GetAPI(testEnv, 10, 0, "avs_get_frame"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := GetAPI(testEnv, 10, 0, "avs_get_frame"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := host.resolves["avs_get_frame"]; got != 1 {
		t.Errorf("expected avs_get_frame resolved once, got %d", got)
	}
	if host.opens != 1 {
		t.Errorf("expected library opened once, got %d", host.opens)
	}
}

func TestGetAPIVersionTooOld(t *testing.T) {
	host := newFakeHost(9, 0)
	host.install(t)

	api, err := GetAPI(testEnv, 10, 0)
	if api != nil {
		t.Fatal("expected nil table")
	}
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "10.0") {
		t.Errorf("expected message to name required version 10.0, got: %s", msg)
	}
	if !strings.Contains(msg, "9") {
		t.Errorf("expected message to name detected version 9, got: %s", msg)
	}
	if GetLastError() != msg {
		t.Errorf("expected GetLastError to match, got: %s", GetLastError())
	}
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount rolled back to 0, got %d", got)
	}
	if host.closes != 1 {
		t.Errorf("expected library closed after version failure, got %d closes", host.closes)
	}
}

func TestGetAPIVersionBugfixComparison(t *testing.T) {
	tests := []struct {
		name                    string
		hostVersion, hostBugfix int
		reqVersion, reqBugfix   int
		ok                      bool
	}{
		{"newer major", 11, 0, 10, 3, true},
		{"equal major equal bugfix", 10, 2, 10, 2, true},
		{"equal major newer bugfix", 10, 3, 10, 2, true},
		{"equal major older bugfix", 10, 1, 10, 2, false},
		{"older major", 9, 9, 10, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host := newFakeHost(tc.hostVersion, tc.hostBugfix)
			host.install(t)

			api, err := GetAPI(testEnv, tc.reqVersion, tc.reqBugfix)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if api == nil {
					t.Fatal("expected non-nil table")
				}
			} else {
				if err == nil {
					t.Fatal("expected error")
				}
				if api != nil {
					t.Fatal("expected nil table")
				}
			}
		})
	}
}

func TestGetAPIDegradedVersionCheck(t *testing.T) {
	host := newFakeHost(10, 0)
	host.hasEnvProperty = false
	host.checkVersionFails = true
	host.install(t)

	_, err := GetAPI(testEnv, 10, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "10.0") {
		t.Errorf("expected message to name required version 10.0, got: %s", msg)
	}
	if !strings.Contains(msg, "too old") {
		t.Errorf("expected degraded message, got: %s", msg)
	}
	if strings.Contains(msg, "found") {
		t.Errorf("degraded message must not claim a detected version, got: %s", msg)
	}
}

func TestGetAPIDegradedVersionCheckSuccess(t *testing.T) {
	host := newFakeHost(10, 0)
	host.hasEnvProperty = false
	host.install(t)

	api, err := GetAPI(testEnv, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.GetEnvProperty != 0 {
		t.Error("expected avs_get_env_property slot to stay empty on pre-V8 hosts")
	}
}

func TestGetAPIUnknownRequiredName(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	_, err := GetAPI(testEnv, 10, 0, "avs_totally_made_up")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown function requested as required") {
		t.Errorf("unexpected message: %v", err)
	}
	if !strings.Contains(err.Error(), "avs_totally_made_up") {
		t.Errorf("expected message to name the offending symbol, got: %v", err)
	}
	if instance.handle != 0 {
		t.Error("expected handle to be closed, not leaked")
	}
	if host.closes != 1 {
		t.Errorf("expected library closed, got %d closes", host.closes)
	}
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount 0, got %d", got)
	}
}

func TestGetAPIMissingRequiredBootstrapSymbol(t *testing.T) {
	for _, name := range []string{symCheckVersion, symAtExit} {
		t.Run(name, func(t *testing.T) {
			host := newFakeHost(10, 0)
			host.missing[name] = true
			host.install(t)

			_, err := GetAPI(testEnv, 10, 0)
			if err == nil {
				t.Fatal("expected error")
			}
			want := "failed to load required function: " + name
			if !strings.Contains(err.Error(), want) {
				t.Errorf("expected %q, got: %v", want, err)
			}
			if host.closes != 1 {
				t.Errorf("expected library closed, got %d closes", host.closes)
			}
		})
	}
}

func TestGetAPIMissingRequiredCallerSymbol(t *testing.T) {
	host := newFakeHost(10, 0)
	host.missing["avs_get_frame"] = true
	host.install(t)

	_, err := GetAPI(testEnv, 10, 0, "avs_get_frame")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to load required function: avs_get_frame") {
		t.Errorf("unexpected message: %v", err)
	}
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount 0, got %d", got)
	}
}

func TestGetAPILibraryNotFound(t *testing.T) {
	host := newFakeHost(10, 0)
	host.openFails = true
	host.install(t)

	_, err := GetAPI(testEnv, 10, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), defaultLibraryName()) {
		t.Errorf("expected message to name %s, got: %v", defaultLibraryName(), err)
	}
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount 0, got %d", got)
	}
}

func TestGetAPIStricterCallerForcesUnload(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	if _, err := GetAPI(testEnv, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api, err := GetAPI(testEnv, 11, 0)
	if api != nil || err == nil {
		t.Fatal("expected stricter caller to fail against a 10.0 host")
	}
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount forced to 0, got %d", got)
	}
	if CurrentAPI() != nil {
		t.Error("expected shared accessor nil after forced unload")
	}
	if IsInitialized() {
		t.Error("expected loader uninitialized after forced unload")
	}
	if host.closes != 1 {
		t.Errorf("expected library closed once, got %d", host.closes)
	}

	// A straggling teardown from the first environment must not drive the
	// count negative or unload twice.
	teardownCallback(0, testEnv)
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount to stay 0, got %d", got)
	}
	if host.closes != 1 {
		t.Errorf("expected no second unload, got %d closes", host.closes)
	}
}

func TestGetAPILaxerCallerSharesTable(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	first, err := GetAPI(testEnv, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GetAPI(testEnv, 9, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected both callers to share one table")
	}
	if got := instance.refs.Load(); got != 2 {
		t.Errorf("expected refcount 2, got %d", got)
	}
}

func TestGetAPILoadRaceBackoff(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	// Simulate another first caller still inside the load transaction.
	instance.refs.Store(1)

	api, err := GetAPI(testEnv, 10, 0)
	if api != nil || err == nil {
		t.Fatal("expected back-off failure while a load is in flight")
	}
	if !strings.Contains(err.Error(), "in progress or previously failed") {
		t.Errorf("unexpected message: %v", err)
	}
	if got := instance.refs.Load(); got != 1 {
		t.Errorf("expected extra reference released, got %d", got)
	}
	if host.opens != 0 {
		t.Errorf("expected no load attempt, got %d opens", host.opens)
	}
}

func TestTeardownNeverGoesNegative(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	teardownCallback(0, testEnv)
	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount to stay 0, got %d", got)
	}
}

func TestGetLastError(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	if got := GetLastError(); got != fallbackErrorMessage {
		t.Errorf("expected fallback message, got %q", got)
	}

	host.openFails = true
	if _, err := GetAPI(testEnv, 10, 0); err == nil {
		t.Fatal("expected error")
	}
	if got := GetLastError(); !strings.Contains(got, defaultLibraryName()) {
		t.Errorf("expected recorded failure, got %q", got)
	}

	host.openFails = false
	if _, err := GetAPI(testEnv, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := GetLastError(); got != fallbackErrorMessage {
		t.Errorf("expected message cleared after successful load, got %q", got)
	}
}

func TestFailfTruncatesOnRuneBoundary(t *testing.T) {
	resetLoaderState()
	t.Cleanup(resetLoaderState)

	// "x" shifts every two-byte rune to an odd offset, so the truncation
	// point falls inside a rune.
	err := failf("%s", "x"+strings.Repeat("é", maxErrorMessageLength))
	msg := err.Error()
	if len(msg) > maxErrorMessageLength {
		t.Errorf("message length %d exceeds %d", len(msg), maxErrorMessageLength)
	}
	if !utf8.ValidString(msg) {
		t.Error("truncated message is not valid UTF-8")
	}
	if got := GetLastError(); got != msg {
		t.Errorf("GetLastError = %q, want %q", got, msg)
	}
}

func TestSetSharedLibraryPath(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	if err := SetSharedLibraryPath("/opt/avisynth/libavisynth.so"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := GetAPI(testEnv, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host.lastOpenPath != "/opt/avisynth/libavisynth.so" {
		t.Errorf("expected configured path to be opened, got %q", host.lastOpenPath)
	}

	if err := SetSharedLibraryPath("/other/path.so"); err == nil {
		t.Error("expected error changing path while loaded")
	}
}

func TestVersionSatisfies(t *testing.T) {
	tests := []struct {
		hostVersion, hostBugfix, reqVersion, reqBugfix int
		want                                           bool
	}{
		{11, 0, 10, 5, true},
		{10, 0, 10, 0, true},
		{10, 1, 10, 0, true},
		{10, 0, 10, 1, false},
		{9, 9, 10, 0, false},
	}

	for _, tc := range tests {
		got := versionSatisfies(tc.hostVersion, tc.hostBugfix, tc.reqVersion, tc.reqBugfix)
		if got != tc.want {
			t.Errorf("versionSatisfies(%d,%d,%d,%d) = %v, want %v",
				tc.hostVersion, tc.hostBugfix, tc.reqVersion, tc.reqBugfix, got, tc.want)
		}
	}
}

func TestConcurrentGetAPIAndTeardown(t *testing.T) {
	host := newFakeHost(10, 0)
	host.install(t)

	// Load once up front so the concurrent callers hit the shared path.
	if _, err := GetAPI(testEnv, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const concurrency = 10
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := GetAPI(testEnv, 10, 0); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := instance.refs.Load(); got != concurrency+1 {
		t.Fatalf("expected refcount %d, got %d", concurrency+1, got)
	}

	for i := 0; i < concurrency+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			teardownCallback(0, testEnv)
		}()
	}
	wg.Wait()

	if got := instance.refs.Load(); got != 0 {
		t.Errorf("expected refcount 0, got %d", got)
	}
	if host.closes != 1 {
		t.Errorf("expected a single unload, got %d", host.closes)
	}
}

func BenchmarkGetAPIAlreadyLoaded(b *testing.B) {
	host := newFakeHost(10, 0)
	resetLoaderState()
	defer resetLoaderState()

	prevOpen, prevResolve, prevClose := openLibrary, resolveSymbol, closeLibrary
	prevCheck, prevAtExit, prevProp := bindCheckVersion, bindAtExit, bindEnvProperty
	defer func() {
		openLibrary, resolveSymbol, closeLibrary = prevOpen, prevResolve, prevClose
		bindCheckVersion, bindAtExit, bindEnvProperty = prevCheck, prevAtExit, prevProp
	}()

	openLibrary = func(path string) (uintptr, error) { return 0xBEEF, nil }
	resolveSymbol = func(handle uintptr, name string) (uintptr, error) { return host.addr(name), nil }
	closeLibrary = func(handle uintptr) error { return nil }
	bindCheckVersion = func(addr uintptr) checkVersionFn {
		return func(env uintptr, version int32) int32 { return 0 }
	}
	bindAtExit = func(addr uintptr) atExitFn { return func(env, callback, userData uintptr) {} }
	bindEnvProperty = func(addr uintptr) envPropertyFn {
		return func(env uintptr, prop int32) uintptr { return 10 }
	}

	if _, err := GetAPI(testEnv, 10, 0); err != nil {
		b.Fatalf("unexpected error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetAPI(testEnv, 10, 0)
	}
	b.StopTimer()
}
