package avs

import (
	"fmt"
	"runtime"
)

// Environment pairs an AVS_ScriptEnvironment handle with the loaded function
// table. Plugins wrap the handle the host passed to their init entry point;
// Go hosts embedding AviSynth create their own with CreateScriptEnvironment.
type Environment struct {
	env   uintptr
	owned bool
	api   *API

	getProperty    envPropertyFn
	getError       func(env uintptr) uintptr
	functionExists func(env uintptr, name uintptr) int32
	saveString     func(env uintptr, s uintptr, length int32) uintptr
	setMemoryMax   func(env uintptr, mb int32) int32
	getCPUFlags    func(env uintptr) int32
	deleteEnv      func(env uintptr)
}

// WrapEnvironment wraps a host-provided environment handle. The handle stays
// owned by the host; Release is a no-op on wrapped environments.
func WrapEnvironment(api *API, env uintptr) (*Environment, error) {
	if api == nil {
		return nil, fmt.Errorf("AviSynth API table is nil, call GetAPI first")
	}
	if env == 0 {
		return nil, fmt.Errorf("script environment handle is nil")
	}
	return newEnvironment(api, env, false), nil
}

// CreateScriptEnvironment creates a host-side script environment, loading the
// AviSynth library on first use. version is the interface version to request
// (typically InterfaceVersion). Plugins never call this; the host hands them
// an environment instead.
func CreateScriptEnvironment(version int) (*Environment, error) {
	// avs_create_script_environment has to be resolved before GetAPI can run,
	// because GetAPI needs an environment for version negotiation. The extra
	// OS-level handle is closed once the loader holds its own.
	path := sharedLibraryPath()
	handle, err := openLibrary(path)
	if err != nil || handle == 0 {
		return nil, failf("failed to load AviSynth library (%s), is AviSynth+ installed correctly?", path)
	}
	defer func() {
		_ = closeLibrary(handle)
	}()

	createAddr, err := resolveSymbol(handle, "avs_create_script_environment")
	if err != nil || createAddr == 0 {
		return nil, failf("failed to load required function: avs_create_script_environment")
	}
	create := bindSlot[func(version int32) uintptr](createAddr)

	env := create(int32(version))
	if env == 0 {
		return nil, failf("avs_create_script_environment returned a null environment for interface version %d", version)
	}

	api, err := GetAPI(env, version, 0)
	if err != nil {
		if deleteAddr, rerr := resolveSymbol(handle, "avs_delete_script_environment"); rerr == nil && deleteAddr != 0 {
			bindSlot[func(env uintptr)](deleteAddr)(env)
		}
		return nil, err
	}

	return newEnvironment(api, env, true), nil
}

func newEnvironment(api *API, env uintptr, owned bool) *Environment {
	return &Environment{
		env:            env,
		owned:          owned,
		api:            api,
		getProperty:    bindSlot[envPropertyFn](api.GetEnvProperty),
		getError:       bindSlot[func(env uintptr) uintptr](api.GetError),
		functionExists: bindSlot[func(env uintptr, name uintptr) int32](api.FunctionExists),
		saveString:     bindSlot[func(env uintptr, s uintptr, length int32) uintptr](api.SaveString),
		setMemoryMax:   bindSlot[func(env uintptr, mb int32) int32](api.SetMemoryMax),
		getCPUFlags:    bindSlot[func(env uintptr) int32](api.GetCPUFlags),
		deleteEnv:      bindSlot[func(env uintptr)](api.DeleteScriptEnvironment),
	}
}

// Handle returns the raw AVS_ScriptEnvironment pointer for direct calls into
// table slots the wrapper does not cover.
func (e *Environment) Handle() uintptr {
	return e.env
}

// API returns the shared function table.
func (e *Environment) API() *API {
	return e.api
}

// Property queries an environment property (avs_get_env_property).
func (e *Environment) Property(prop EnvProperty) (int, error) {
	if e.getProperty == nil {
		return 0, fmt.Errorf("host does not export avs_get_env_property")
	}
	return int(e.getProperty(e.env, int32(prop))), nil
}

// InterfaceVersion returns the host's interface and bugfix versions.
func (e *Environment) InterfaceVersion() (version, bugfix int, err error) {
	version, err = e.Property(EnvPropertyInterfaceVersion)
	if err != nil {
		return 0, 0, err
	}
	bugfix, err = e.Property(EnvPropertyInterfaceBugfix)
	if err != nil {
		return 0, 0, err
	}
	return version, bugfix, nil
}

// Error returns the host's pending error message, empty when none
// (avs_get_error).
func (e *Environment) Error() (string, error) {
	if e.getError == nil {
		return "", fmt.Errorf("host does not export avs_get_error")
	}
	return CstringToGo(e.getError(e.env)), nil
}

// FunctionExists reports whether the named script function is defined
// (avs_function_exists).
func (e *Environment) FunctionExists(name string) (bool, error) {
	if e.functionExists == nil {
		return false, fmt.Errorf("host does not export avs_function_exists")
	}
	nameBytes, namePtr := GoToCstring(name)
	exists := e.functionExists(e.env, namePtr)
	runtime.KeepAlive(nameBytes)
	return exists != 0, nil
}

// SaveString copies s into environment-owned storage and returns the stable
// C pointer (avs_save_string). The host frees it with the environment.
func (e *Environment) SaveString(s string) (uintptr, error) {
	if e.saveString == nil {
		return 0, fmt.Errorf("host does not export avs_save_string")
	}
	strBytes, strPtr := GoToCstring(s)
	saved := e.saveString(e.env, strPtr, int32(len(s)))
	runtime.KeepAlive(strBytes)
	return saved, nil
}

// SetMemoryMax sets the host's frame cache limit in MiB and returns the
// resulting limit (avs_set_memory_max).
func (e *Environment) SetMemoryMax(mb int) (int, error) {
	if e.setMemoryMax == nil {
		return 0, fmt.Errorf("host does not export avs_set_memory_max")
	}
	return int(e.setMemoryMax(e.env, int32(mb))), nil
}

// CPUFlags returns the host's CPU capability bitmask (avs_get_cpu_flags).
func (e *Environment) CPUFlags() (CPUFlags, error) {
	if e.getCPUFlags == nil {
		return 0, fmt.Errorf("host does not export avs_get_cpu_flags")
	}
	return CPUFlags(e.getCPUFlags(e.env)), nil
}

// Release destroys an environment created by CreateScriptEnvironment. The
// host fires the registered at-exit callbacks during deletion, which drops
// the loader reference taken when the environment was created. Wrapped
// (host-owned) environments are not touched.
func (e *Environment) Release() error {
	if !e.owned || e.env == 0 {
		return nil
	}
	if e.deleteEnv == nil {
		return fmt.Errorf("host does not export avs_delete_script_environment")
	}
	e.deleteEnv(e.env)
	e.env = 0
	return nil
}
