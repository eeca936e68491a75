package avs

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// DefaultAviSynthVersion is the AviSynth+ release used for portable-archive
// install directories when no version is configured.
const DefaultAviSynthVersion = "3.7.3"

var errSharedLibraryNotFound = errors.New("AviSynth shared library not found")
var bootstrapCacheFallbackWarnOnce sync.Once

// BootstrapOption configures EnsureAviSynthSharedLibrary.
type BootstrapOption func(*bootstrapConfig) error

type bootstrapConfig struct {
	libraryPath string
	cacheDir    string
	version     string
	archivePath string
	goos        string
	goarch      string
}

type libraryArtifact struct {
	platform       string
	primaryLibrary string
	libraryGlob    string
	systemPaths    []string
}

// WithBootstrapLibraryPath forces bootstrap to use an existing AviSynth
// shared library path.
func WithBootstrapLibraryPath(path string) BootstrapOption {
	return func(cfg *bootstrapConfig) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return fmt.Errorf("bootstrap library path cannot be empty")
		}
		cfg.libraryPath = path
		return nil
	}
}

// WithBootstrapCacheDir sets the cache directory used for portable-archive
// installs.
func WithBootstrapCacheDir(dir string) BootstrapOption {
	return func(cfg *bootstrapConfig) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("bootstrap cache directory cannot be empty")
		}
		cfg.cacheDir = dir
		return nil
	}
}

// WithBootstrapVersion sets the AviSynth+ version label for the install
// directory (for example: 3.7.3).
func WithBootstrapVersion(version string) BootstrapOption {
	return func(cfg *bootstrapConfig) error {
		version = strings.TrimSpace(version)
		if version == "" {
			return fmt.Errorf("bootstrap version cannot be empty")
		}
		cfg.version = version
		return nil
	}
}

// WithBootstrapPortableArchive installs the shared library from a local
// AviSynth+ portable zip archive into the cache directory.
func WithBootstrapPortableArchive(path string) BootstrapOption {
	return func(cfg *bootstrapConfig) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return fmt.Errorf("bootstrap archive path cannot be empty")
		}
		cfg.archivePath = path
		return nil
	}
}

// EnsureAviSynthSharedLibrary resolves an absolute path to an AviSynth shared
// library: an explicitly configured path, a previously installed portable
// archive in the cache, a newly installed one, or a system install location,
// in that order.
func EnsureAviSynthSharedLibrary(opts ...BootstrapOption) (string, error) {
	cfg, err := resolveBootstrapConfig(opts...)
	if err != nil {
		return "", err
	}

	if cfg.libraryPath != "" {
		return validateLibraryFile(cfg.libraryPath)
	}

	artifact, err := resolveLibraryArtifact(cfg.goos, cfg.goarch)
	if err != nil {
		return "", err
	}

	installDir := filepath.Join(cfg.cacheDir, artifact.installName(cfg.version))
	if path, resolveErr := resolveInstalledLibraryPath(installDir, artifact); resolveErr == nil {
		return path, nil
	} else if !errors.Is(resolveErr, errSharedLibraryNotFound) {
		return "", resolveErr
	}

	if cfg.archivePath != "" {
		if err := os.MkdirAll(cfg.cacheDir, 0o755); err != nil {
			return "", errors.Wrapf(err, "failed to create bootstrap cache directory %q", cfg.cacheDir)
		}

		lockPath := filepath.Join(cfg.cacheDir, ".locks", fmt.Sprintf("%s-%s.lock", artifact.platform, cfg.version))
		var resolvedPath string
		if err := withProcessFileLock(lockPath, func() error {
			if path, resolveErr := resolveInstalledLibraryPath(installDir, artifact); resolveErr == nil {
				resolvedPath = path
				return nil
			} else if !errors.Is(resolveErr, errSharedLibraryNotFound) {
				return resolveErr
			}

			if err := installPortableArchive(cfg.archivePath, artifact, installDir); err != nil {
				return err
			}

			path, resolveErr := resolveInstalledLibraryPath(installDir, artifact)
			if resolveErr != nil {
				return errors.Wrap(resolveErr, "archive installed but shared library could not be resolved")
			}
			resolvedPath = path
			return nil
		}); err != nil {
			return "", err
		}

		return resolvedPath, nil
	}

	for _, candidate := range artifact.systemPaths {
		if path, err := validateLibraryFile(candidate); err == nil {
			return path, nil
		}
	}

	return "", errors.Wrapf(errSharedLibraryNotFound,
		"no %s found; install AviSynth+, set AVISYNTH_LIB_PATH, or provide a portable archive", artifact.primaryLibrary)
}

// BootstrapSharedLibrary resolves a shared library path via bootstrap and
// sets it as the loader's library path for the next load.
func BootstrapSharedLibrary(opts ...BootstrapOption) (string, error) {
	path, err := EnsureAviSynthSharedLibrary(opts...)
	if err != nil {
		return "", err
	}
	if err := SetSharedLibraryPath(path); err != nil {
		return "", err
	}
	return path, nil
}

func resolveBootstrapConfig(opts ...BootstrapOption) (bootstrapConfig, error) {
	cfg := bootstrapConfig{
		libraryPath: strings.TrimSpace(os.Getenv("AVISYNTH_LIB_PATH")),
		cacheDir:    strings.TrimSpace(os.Getenv("AVISYNTH_CACHE_DIR")),
		version:     strings.TrimSpace(os.Getenv("AVISYNTH_VERSION")),
		goos:        runtime.GOOS,
		goarch:      runtime.GOARCH,
	}

	if cfg.version == "" {
		cfg.version = DefaultAviSynthVersion
	}
	if cfg.cacheDir == "" {
		cfg.cacheDir = defaultBootstrapCacheDir()
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return bootstrapConfig{}, err
		}
	}

	version, err := normalizeLibraryVersion(cfg.version)
	if err != nil {
		return bootstrapConfig{}, err
	}
	cfg.version = version

	if cfg.cacheDir == "" {
		return bootstrapConfig{}, fmt.Errorf("bootstrap cache directory is empty")
	}
	cfg.cacheDir = filepath.Clean(cfg.cacheDir)

	return cfg, nil
}

func resolveLibraryArtifact(goos, goarch string) (libraryArtifact, error) {
	switch goos {
	case "darwin":
		switch goarch {
		case "arm64", "amd64":
			return libraryArtifact{
				platform:       "macos-" + goarch,
				primaryLibrary: "libavisynth.dylib",
				libraryGlob:    "libavisynth*.dylib",
				systemPaths: []string{
					"/usr/local/lib/libavisynth.dylib",
					"/opt/homebrew/lib/libavisynth.dylib",
				},
			}, nil
		}
	case "linux":
		switch goarch {
		case "arm64", "amd64":
			return libraryArtifact{
				platform:       "linux-" + goarch,
				primaryLibrary: "libavisynth.so",
				libraryGlob:    "libavisynth.so*",
				systemPaths: []string{
					"/usr/lib/libavisynth.so",
					"/usr/local/lib/libavisynth.so",
					"/usr/lib/x86_64-linux-gnu/libavisynth.so",
				},
			}, nil
		}
	case "windows":
		switch goarch {
		case "amd64", "arm64":
			return libraryArtifact{
				platform:       "win-" + goarch,
				primaryLibrary: "avisynth.dll",
				libraryGlob:    "avisynth*.dll",
				systemPaths: []string{
					`C:\Windows\System32\avisynth.dll`,
					`C:\Program Files (x86)\AviSynth+\x64\avisynth.dll`,
				},
			}, nil
		case "386":
			return libraryArtifact{
				platform:       "win-x86",
				primaryLibrary: "avisynth.dll",
				libraryGlob:    "avisynth*.dll",
				systemPaths: []string{
					`C:\Windows\SysWOW64\avisynth.dll`,
					`C:\Program Files (x86)\AviSynth+\x86\avisynth.dll`,
				},
			}, nil
		}
	}

	return libraryArtifact{}, fmt.Errorf("unsupported platform for AviSynth bootstrap: GOOS=%s GOARCH=%s", goos, goarch)
}

func (a libraryArtifact) installName(version string) string {
	return fmt.Sprintf("avisynth-%s-%s", a.platform, version)
}

// archDir maps GOARCH to the subdirectory layout of AviSynth+ portable
// archives.
func (a libraryArtifact) archDir(goarch string) string {
	switch goarch {
	case "amd64", "arm64":
		return "x64"
	default:
		return "x86"
	}
}

func installPortableArchive(archivePath string, artifact libraryArtifact, installDir string) error {
	stagingRoot := installDir + ".staging"
	if err := os.RemoveAll(stagingRoot); err != nil {
		return errors.Wrapf(err, "failed to clean bootstrap staging directory %q", stagingRoot)
	}
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create bootstrap staging directory %q", stagingRoot)
	}
	defer func() {
		_ = os.RemoveAll(stagingRoot)
	}()

	if err := extractZIPArchive(archivePath, stagingRoot); err != nil {
		return err
	}

	if _, err := resolveInstalledLibraryPath(stagingRoot, artifact); err != nil {
		if errors.Is(err, errSharedLibraryNotFound) {
			return errors.Errorf("archive %q did not contain %s", archivePath, artifact.primaryLibrary)
		}
		return err
	}

	if err := os.RemoveAll(installDir); err != nil {
		return errors.Wrapf(err, "failed to remove previous AviSynth install at %q", installDir)
	}
	if err := os.Rename(stagingRoot, installDir); err != nil {
		return errors.Wrapf(err, "failed to install AviSynth to %q", installDir)
	}
	return nil
}

func extractZIPArchive(archivePath, destinationDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrapf(err, "failed to open ZIP archive %q", archivePath)
	}
	defer func() {
		_ = reader.Close()
	}()

	regularFiles := 0
	for _, entry := range reader.File {
		targetPath, err := secureArchiveJoin(destinationDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return errors.Wrapf(err, "failed to create directory %q", targetPath)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create parent directory for %q", targetPath)
		}

		rc, err := entry.Open()
		if err != nil {
			return errors.Wrapf(err, "failed to open ZIP entry %q", entry.Name)
		}

		mode := entry.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			_ = rc.Close()
			return errors.Wrapf(err, "failed to create extracted file %q", targetPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return errors.Wrapf(err, "failed to extract ZIP entry %q", entry.Name)
		}

		if err := outFile.Close(); err != nil {
			_ = rc.Close()
			return errors.Wrapf(err, "failed to close extracted file %q", targetPath)
		}
		if err := rc.Close(); err != nil {
			return errors.Wrapf(err, "failed to close ZIP entry %q", entry.Name)
		}

		regularFiles++
	}

	if regularFiles == 0 {
		return errors.Errorf("archive %q did not contain regular files", archivePath)
	}

	return nil
}

func resolveInstalledLibraryPath(installDir string, artifact libraryArtifact) (string, error) {
	searchDirs := []string{
		installDir,
		filepath.Join(installDir, artifact.archDir(runtime.GOARCH)),
		filepath.Join(installDir, "lib"),
	}

	var invalidCandidates []error
	for _, dir := range searchDirs {
		primaryPath := filepath.Join(dir, artifact.primaryLibrary)
		if path, err := validateLibraryFile(primaryPath); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			invalidCandidates = append(invalidCandidates, errors.Wrap(err, primaryPath))
		}

		matches, err := filepath.Glob(filepath.Join(dir, artifact.libraryGlob))
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve AviSynth library path")
		}
		sort.Strings(matches)
		for _, match := range matches {
			path, err := validateLibraryFile(match)
			if err == nil {
				return path, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				invalidCandidates = append(invalidCandidates, errors.Wrap(err, match))
			}
		}
	}

	if len(invalidCandidates) > 0 {
		return "", errors.Errorf("found AviSynth shared library candidates in %q but none are valid: %v", installDir, invalidCandidates)
	}

	return "", errSharedLibraryNotFound
}

func validateLibraryFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("library path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve absolute path for %q", path)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat library file %q", absPath)
	}
	if info.IsDir() {
		return "", errors.Errorf("library path points to a directory: %q", absPath)
	}
	if info.Size() == 0 {
		return "", errors.Errorf("library file is empty: %q", absPath)
	}

	return absPath, nil
}

func withProcessFileLock(lockPath string, fn func() error) (err error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create lock directory for %q", lockPath)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open lock file %q", lockPath)
	}

	if err := lockFile(file); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "failed to acquire lock %q", lockPath)
	}

	defer func() {
		unlockErr := unlockFile(file)
		closeErr := file.Close()
		if err == nil {
			if unlockErr != nil {
				err = unlockErr
			} else {
				err = closeErr
			}
		}
	}()

	if fn == nil {
		return nil
	}
	return fn()
}

func secureArchiveJoin(baseDir, archivePath string) (string, error) {
	archivePath = strings.TrimSpace(archivePath)
	if archivePath == "" {
		return "", fmt.Errorf("invalid empty archive entry path")
	}

	normalized := strings.ReplaceAll(archivePath, "\\", "/")
	if strings.HasPrefix(normalized, "/") {
		return "", errors.Errorf("invalid absolute archive entry path %q", archivePath)
	}
	if len(normalized) >= 2 && ((normalized[0] >= 'A' && normalized[0] <= 'Z') || (normalized[0] >= 'a' && normalized[0] <= 'z')) && normalized[1] == ':' {
		return "", errors.Errorf("invalid archive entry path with drive letter %q", archivePath)
	}

	cleaned := filepath.Clean(normalized)
	if cleaned == "." {
		return "", errors.Errorf("invalid archive entry path %q", archivePath)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", errors.Errorf("unsafe archive entry path %q", archivePath)
	}

	targetPath := filepath.Join(baseDir, cleaned)
	relPath, err := filepath.Rel(baseDir, targetPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve archive path %q", archivePath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(os.PathSeparator)) {
		return "", errors.Errorf("unsafe archive entry path %q", archivePath)
	}

	return targetPath, nil
}

func defaultBootstrapCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err == nil && cacheDir != "" {
		return filepath.Join(cacheDir, "pure-avisynth")
	}

	fallback := filepath.Join(os.TempDir(), "pure-avisynth")
	bootstrapCacheFallbackWarnOnce.Do(func() {
		if err != nil {
			log.Printf("WARNING: failed to resolve user cache directory (%v); using temporary AviSynth cache at %q. Set AVISYNTH_CACHE_DIR for a persistent cache.", err, fallback)
			return
		}
		log.Printf("WARNING: user cache directory is empty; using temporary AviSynth cache at %q. Set AVISYNTH_CACHE_DIR for a persistent cache.", fallback)
	})
	return fallback
}

func normalizeLibraryVersion(version string) (string, error) {
	version = strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if version == "" {
		return "", fmt.Errorf("AviSynth version is empty")
	}

	parsed, err := semver.NewVersion(version)
	if err != nil {
		return "", errors.Wrapf(err, "invalid AviSynth version %q", version)
	}

	return parsed.String(), nil
}
