package avs

import "sort"

// Bootstrap entry points resolved before anything else during loading.
// avs_check_version and avs_at_exit are mandatory; avs_get_env_property was
// added in interface V8 and is optional.
const (
	symCheckVersion   = "avs_check_version"
	symAtExit         = "avs_at_exit"
	symGetEnvProperty = "avs_get_env_property"
)

// Func returns the resolved address of the named entry point, or 0 when the
// name is unknown to the symbol table or the loaded host does not export it.
func (a *API) Func(name string) uintptr {
	if a == nil {
		return 0
	}
	slot, ok := apiSymbols[name]
	if !ok {
		return 0
	}
	return *slot(a)
}

// Has reports whether the named entry point was resolved in the loaded host.
func (a *API) Has(name string) bool {
	return a.Func(name) != 0
}

// KnownSymbols returns the sorted list of entry point names this loader was
// built to resolve. The list is append-only across releases.
func KnownSymbols() []string {
	names := make([]string, 0, len(apiSymbols))
	for name := range apiSymbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
