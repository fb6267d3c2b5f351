package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

var ErrNotInstalled = errors.New("ffmpeg and ffprobe are required: install them or set KARA_FFMPEG_PATH and KARA_FFPROBE_PATH")

// Ensure locates both binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// locate prefers the environment overrides, then PATH.
func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv("KARA_FFMPEG_PATH"),
		FFprobe: getenv("KARA_FFPROBE_PATH"),
	}

	suffix := ""
	if runtime.GOOS == "windows" {
		suffix = ".exe"
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg" + suffix); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe" + suffix); err == nil {
			paths.FFprobe = found
		}
	}

	if paths.FFmpeg == "" || paths.FFprobe == "" {
		return BinaryPaths{}, fmt.Errorf("%w (ffmpeg=%q, ffprobe=%q)", ErrNotInstalled, paths.FFmpeg, paths.FFprobe)
	}
	return paths, nil
}
