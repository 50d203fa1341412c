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

/*
tssimg-report renders tssimg's inputs and outputs into formats a person can
actually look at: BMP cover, secret, and stego images as PNGs, and a
Markdown write-up of a distribute/recover run as HTML.

Usage:

	tssimg-report -preview input.bmp > output.png
	tssimg-report -report input.md > output.html

The flags should include exactly one of -preview or -report.

-preview decodes input.bmp with golang.org/x/image/bmp (a general-purpose
decoder, unlike package bmp's own codec, which exists specifically to
round-trip the 4 reserved header bytes tssimg hides its side channel in;
for a disposable visual preview those bytes don't matter) and re-encodes it
as a PNG on stdout.

-report renders input.md to an HTML fragment on stdout using blackfriday.
*/
package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"io/ioutil"
	"os"

	"golang.org/x/image/bmp"
	blackfriday "gopkg.in/russross/blackfriday.v2"
)

var (
	previewFlag = flag.Bool("preview", false, "render a BMP image as a PNG on stdout")
	reportFlag  = flag.Bool("report", false, "render a Markdown file as HTML on stdout")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tssimg-report -preview|-report input_filename\n")
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

	if *previewFlag == *reportFlag {
		return fmt.Errorf("exactly one of -preview or -report must be given")
	}
	if flag.NArg() != 1 {
		return fmt.Errorf("exactly one input filename must be given")
	}
	filename := flag.Arg(0)

	if *previewFlag {
		return preview(filename, os.Stdout)
	}
	return report(filename, os.Stdout)
}

func preview(filename string, w io.Writer) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return fmt.Errorf("tssimg-report: decoding %s: %w", filename, err)
	}
	return png.Encode(w, img)
}

func report(filename string, w io.Writer) error {
	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	out := blackfriday.Run(src, blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	_, err = w.Write(out)
	return err
}
