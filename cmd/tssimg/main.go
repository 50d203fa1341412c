// Copyright 2026 The Tssimg Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ----------------

// tssimg distributes a secret BMP image among n cover images, or recovers
// it from k of the resulting stego images.
//
// Usage:
//
//	tssimg -d -secret secret.bmp -k num [-n num] [-dir directory]
//	tssimg -r -secret out.bmp -k num [-n num] [-dir directory] [-width num] [-height num]
//
// Exactly one of -d (distribute) or -r (recover) must be given.
//
// Distribute reads -secret and n cover images from -dir (every *.bmp file
// there, in file-name order; -n defaults to that count), then writes one
// stego*.bmp file per cover back into -dir.
//
// Recover reads k stego*.bmp files from -dir (again in file-name order; -n
// defaults to k) and writes the reconstructed secret to -secret. -width
// and -height are optional in every case: at -k 8, the secret's
// dimensions default to the first loaded stego image's own width and
// height, since the k == 8 shadow layout carries no dimension header of
// its own (see package stego); for every other k they default to the
// header embedded in that same stego image. If either is omitted, both
// default as above. For k other than 8, the dimensions in use are
// cross-checked against the header in every stego image; at -k 8 given
// values are used as they are.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/grayraster/tssimg"
	"github.com/grayraster/tssimg/internal/climsg"
	"github.com/grayraster/tssimg/lib/bmp"
	"github.com/grayraster/tssimg/lib/pixelgrid"
)

var (
	dFlag = flag.Bool("d", false, "distribute the secret image into n cover images")
	rFlag = flag.Bool("r", false, "recover the secret image from k stego images")

	secretFlag = flag.String("secret", "", climsg.SecretUsage)
	kFlag      = flag.Int("k", climsg.KDefault, climsg.KUsage)
	nFlag      = flag.Int("n", climsg.NDefault, climsg.NUsage)
	dirFlag    = flag.String("dir", climsg.DirDefault, climsg.DirUsage)

	widthFlag  = flag.Int("width", 0, "the secret image's width (recover only); defaults to the dimensions carried by the stego images themselves")
	heightFlag = flag.Int("height", 0, "the secret image's height (recover only); defaults to the dimensions carried by the stego images themselves")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tssimg -d|-r -secret file -k num [-n num] [-dir directory]\n")
	flag.PrintDefaults()
}

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = usage
	flag.Parse()

	if *dFlag == *rFlag {
		return fmt.Errorf("exactly one of -d or -r must be given")
	}
	if *secretFlag == "" {
		return fmt.Errorf("-secret is required")
	}
	if err := climsg.ValidateK(*kFlag); err != nil {
		return err
	}

	bmpPaths, err := findBMPFiles(*dirFlag)
	if err != nil {
		return err
	}

	if *dFlag {
		return distribute(bmpPaths)
	}
	return recover(bmpPaths)
}

func findBMPFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading -dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".bmp" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func distribute(coverPaths []string) error {
	n := *nFlag
	if n == 0 {
		n = len(coverPaths)
	}
	if err := climsg.ValidateKN(*kFlag, n); err != nil {
		return err
	}

	secret, err := bmp.Load(*secretFlag)
	if err != nil {
		return fmt.Errorf("loading secret image: %w", err)
	}

	requiredBits := climsg.RequiredBits(*kFlag, secret.Width, secret.Height)

	var covers []*pixelgrid.Grid
	for _, path := range coverPaths {
		if len(covers) == n {
			break
		}
		g, err := bmp.Load(path)
		if err != nil {
			return fmt.Errorf("loading cover image %s: %w", path, err)
		}
		if g.PaddedCapacity() >= requiredBits {
			covers = append(covers, g)
		}
	}
	if len(covers) < n {
		return fmt.Errorf("found %d cover images in %s large enough to hide the secret, need %d", len(covers), *dirFlag, n)
	}

	stegoImages, err := tssimg.Distribute(secret, *kFlag, n, covers)
	if err != nil {
		return err
	}
	for i, img := range stegoImages {
		out := filepath.Join(*dirFlag, fmt.Sprintf("stego%d.bmp", i+1))
		if err := bmp.Save(out, img); err != nil {
			return fmt.Errorf("saving %s: %w", out, err)
		}
	}
	return nil
}

func recover(bmpPaths []string) error {
	var stegoPaths []string
	for _, p := range bmpPaths {
		if ok, _ := filepath.Match("stego*.bmp", filepath.Base(p)); ok {
			stegoPaths = append(stegoPaths, p)
		}
	}

	n := *nFlag
	if n == 0 {
		n = *kFlag
	}
	if len(stegoPaths) < n {
		return fmt.Errorf("found %d stego images in %s, need %d", len(stegoPaths), *dirFlag, n)
	}

	shares := make([]*pixelgrid.Grid, *kFlag)
	for i := 0; i < *kFlag; i++ {
		g, err := bmp.Load(stegoPaths[i])
		if err != nil {
			return fmt.Errorf("loading stego image %s: %w", stegoPaths[i], err)
		}
		shares[i] = g
	}

	recovered, err := tssimg.Recover(*kFlag, *widthFlag, *heightFlag, shares)
	if err != nil {
		return err
	}
	return bmp.Save(*secretFlag, recovered)
}
