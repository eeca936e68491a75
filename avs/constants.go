package avs

const (
	// InterfaceVersion is the AviSynth interface version the symbol table in
	// api.go was generated against. Plugins may require any version up to this
	// one; the host decides at load time whether it can satisfy the request.
	InterfaceVersion = 11

	// InterfaceBugfixVersion is the bugfix revision of InterfaceVersion the
	// symbol table was generated against.
	InterfaceBugfixVersion = 0
)

// EnvProperty identifies a script-environment property queried through
// avs_get_env_property.
type EnvProperty int32

const (
	EnvPropertyPhysicalCPUs EnvProperty = iota + 1
	EnvPropertyLogicalCPUs
	EnvPropertyThreadpoolThreads
	EnvPropertyFilterchainThreads
	EnvPropertyThreadID
	EnvPropertyVersion
	EnvPropertyHostSystemEndianness
	// EnvPropertyInterfaceVersion and EnvPropertyInterfaceBugfix were added in
	// interface V9; older hosts only expose avs_check_version.
	EnvPropertyInterfaceVersion
	EnvPropertyInterfaceBugfix
)

// Plane identifies a video plane for the per-plane frame accessors
// (avs_get_pitch_p and friends).
type Plane int32

const (
	PlaneDefault Plane = 0
	PlanarY      Plane = 1 << 0
	PlanarU      Plane = 1 << 1
	PlanarV      Plane = 1 << 2
	PlanarR      Plane = 1 << 4
	PlanarG      Plane = 1 << 5
	PlanarB      Plane = 1 << 6
	PlanarA      Plane = 1 << 7
)

// CPUFlags is the bitmask returned by avs_get_cpu_flags.
type CPUFlags int64

const (
	CPUForce      CPUFlags = 0x01
	CPUFPU        CPUFlags = 0x02
	CPUMMX        CPUFlags = 0x04
	CPUIntegerSSE CPUFlags = 0x08
	CPUSSE        CPUFlags = 0x10
	CPUSSE2       CPUFlags = 0x20
	CPUSSE3       CPUFlags = 0x40
	CPUSSSE3      CPUFlags = 0x80
	CPUSSE41      CPUFlags = 0x100
	CPUSSE42      CPUFlags = 0x200
	CPUAVX        CPUFlags = 0x400
	CPUAVX2       CPUFlags = 0x800
	CPUFMA3       CPUFlags = 0x1000
	CPUF16C       CPUFlags = 0x2000
	CPUAVX512F    CPUFlags = 0x4000
)

// CacheHints values for avs_set_cache_hints. These are the 2.6 constants;
// the deprecated 2.5 values (0-5) are rejected by modern hosts.
type CacheHints int32

const (
	CacheNothing      CacheHints = 10
	CacheWindow       CacheHints = 11
	CacheGeneric      CacheHints = 12
	CacheForceGeneric CacheHints = 13
	CacheGetPolicy    CacheHints = 30
	CacheGetWindow    CacheHints = 31
	CacheGetRange     CacheHints = 32
	CacheAudio        CacheHints = 50
	CacheAudioNothing CacheHints = 51
	CacheAudioNone    CacheHints = 52
	CacheAudioAuto    CacheHints = 53
)
