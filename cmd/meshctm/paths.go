package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const envOutDir = "MESHCTM_OUT_DIR"

// resolveConvertOut picks the output file for convert. An explicit file
// wins; an existing directory receives <input base>.ctm; with no output the
// file goes to $MESHCTM_OUT_DIR or next to the input. The returned flag is
// true when the path was derived. Parent directories are created.
func resolveConvertOut(in, outArg string) (string, bool, error) {
	outArg = strings.TrimSpace(outArg)
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", false, fmt.Errorf("invalid input file: %q", in)
	}

	if outArg != "" {
		outPath := filepath.Clean(outArg)
		if st, err := os.Stat(outPath); err == nil && st.IsDir() {
			outPath = filepath.Join(outPath, base+".ctm")
			if outPath == filepath.Clean(in) {
				return "", true, fmt.Errorf("output would overwrite input %q", in)
			}
			return outPath, true, nil
		}
		if outPath == filepath.Clean(in) {
			return "", false, fmt.Errorf("output would overwrite input %q", in)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return "", false, err
		}
		return outPath, false, nil
	}

	outDir := strings.TrimSpace(os.Getenv(envOutDir))
	if outDir == "" {
		outDir = filepath.Dir(in)
	}
	outPath := filepath.Join(outDir, base+".ctm")
	if filepath.Clean(outPath) == filepath.Clean(in) {
		return "", true, fmt.Errorf("output would overwrite input %q; pass an output path", in)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", true, err
	}
	return outPath, true, nil
}
