// Package main generates the avs.API struct and symbol map from avisynth_c.h.
//
// NOTE: This generator uses simple regex-based parsing which works for the
// current AviSynth+ C API header but may be fragile with future header
// changes. In a future PR, we should consider using a proper C parser like
// tree-sitter-c for more robust parsing.
//
// See: https://github.com/tree-sitter/tree-sitter-c
package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// avscAPIPattern matches exported entry point declarations:
//
//	AVSC_API(int, avs_check_version)(AVS_ScriptEnvironment *, int);
//
// AVSC_INLINE helpers are header-only and never exported, so they are not
// matched.
var avscAPIPattern = regexp.MustCompile(`AVSC_API\(\s*[^,()]+,\s*(avs_\w+)\s*\)`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <path-to-avisynth_c.h>\n", os.Args[0])
		os.Exit(1)
	}

	headerPath := os.Args[1]
	file, err := os.Open(headerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open header file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	var names []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		for _, matches := range avscAPIPattern.FindAllStringSubmatch(line, -1) {
			name := matches[1]
			if seen[name] {
				fmt.Fprintf(os.Stderr, "Error: Duplicate entry point: %s\n", name)
				os.Exit(1)
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	// Validate entry point count
	if len(names) < 90 || len(names) > 120 {
		fmt.Fprintf(os.Stderr, "Warning: Parsed %d entry points, expected ~100 (valid range: 90-120). Header may have changed.\n", len(names))
	}

	// Validate key entry points to catch parser bugs
	for _, key := range []string{
		"avs_check_version",
		"avs_at_exit",
		"avs_get_env_property",
		"avs_create_script_environment",
		"avs_get_frame",
	} {
		if !seen[key] {
			fmt.Fprintf(os.Stderr, "Error: Key entry point '%s' not found. Parser may be broken.\n", key)
			os.Exit(1)
		}
	}

	generate(names)
}

// groupOrder fixes the section order of the generated struct and map.
var groupOrder = []string{
	"Environment",
	"Clips",
	"Values",
	"Video frames",
	"Frame properties (interface V8+)",
	"Colorspace queries",
}

var clipFunctions = set(
	"avs_clip_get_error", "avs_copy_clip", "avs_get_audio", "avs_get_frame",
	"avs_get_parity", "avs_get_video_info", "avs_release_clip",
	"avs_set_to_clip", "avs_take_clip",
)

var valueFunctions = set("avs_copy_value", "avs_release_value")

var frameFunctions = set(
	"avs_bit_blt", "avs_copy_video_frame", "avs_get_height_p",
	"avs_get_pitch_p", "avs_get_read_ptr_p", "avs_get_row_size_p",
	"avs_get_write_ptr_p", "avs_is_property_writable", "avs_is_writable",
	"avs_make_property_writable", "avs_make_writable", "avs_new_video_frame_a",
	"avs_new_video_frame_p", "avs_new_video_frame_p_a",
	"avs_release_video_frame", "avs_video_frame_amend_pixel_type",
	"avs_video_frame_get_pixel_type",
)

var colorspaceFunctions = set(
	"avs_bits_per_component", "avs_component_size", "avs_get_channel_mask",
	"avs_num_components", "avs_set_channel_mask",
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		m[name] = true
	}
	return m
}

func group(name string) string {
	switch {
	case clipFunctions[name]:
		return "Clips"
	case valueFunctions[name]:
		return "Values"
	case frameFunctions[name]:
		return "Video frames"
	case strings.HasPrefix(name, "avs_prop_"),
		name == "avs_clear_map",
		strings.HasPrefix(name, "avs_get_frame_props_"):
		return "Frame properties (interface V8+)"
	case colorspaceFunctions[name], strings.HasPrefix(name, "avs_is_"):
		return "Colorspace queries"
	default:
		return "Environment"
	}
}

// initialisms maps snake_case name parts that become all-caps in the exported
// Go field name.
var initialisms = map[string]string{
	"cpu":  "CPU",
	"ro":   "RO",
	"rw":   "RW",
	"rgb":  "RGB",
	"rgba": "RGBA",
	"yuva": "YUVA",
	"y":    "Y",
	"y8":   "Y8",
}

var numberedInitialism = regexp.MustCompile(`^(rgb|yuv|yv)(\d+)$`)

// fieldName converts an avs_* entry point name to its Go field name:
// avs_get_pitch_p -> GetPitchP, avs_is_yuv420 -> IsYUV420.
func fieldName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(name, "avs_"), "_") {
		if mapped, ok := initialisms[part]; ok {
			b.WriteString(mapped)
			continue
		}
		if matches := numberedInitialism.FindStringSubmatch(part); matches != nil {
			b.WriteString(strings.ToUpper(matches[1]))
			b.WriteString(matches[2])
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func generate(names []string) {
	grouped := make(map[string][]string)
	for _, name := range names {
		g := group(name)
		grouped[g] = append(grouped[g], name)
	}
	for _, members := range grouped {
		sort.Strings(members)
	}

	fmt.Println("// Code generated by tools/gen_avsapi.go from avisynth_c.h; DO NOT EDIT.")
	fmt.Println()
	fmt.Println("package avs")
	fmt.Println()
	fmt.Println("// API is the flat table of AviSynth C API entry points. Each slot holds the")
	fmt.Println("// resolved address of the matching avs_* function, or 0 when the loaded host")
	fmt.Println("// library does not export it. Slots other than the ones a plugin listed as")
	fmt.Println("// required are resolved best-effort and must be null-checked before use.")
	fmt.Println("type API struct {")
	for i, g := range groupOrder {
		members := grouped[g]
		if len(members) == 0 {
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("\t// %s\n", g)
		for _, name := range members {
			fmt.Printf("\t%s uintptr\n", fieldName(name))
		}
	}
	fmt.Println("}")
	fmt.Println()
	fmt.Println("// apiSymbols maps every exported avs_* entry point name to the API slot it")
	fmt.Println("// resolves into.")
	fmt.Println("var apiSymbols = map[string]func(*API) *uintptr{")
	for i, g := range groupOrder {
		members := grouped[g]
		if len(members) == 0 {
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		for _, name := range members {
			fmt.Printf("\t%q: func(a *API) *uintptr { return &a.%s },\n", name, fieldName(name))
		}
	}
	fmt.Println("}")
}
