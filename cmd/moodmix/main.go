// SPDX-License-Identifier: EPL-2.0

// Command moodmix mixes a voice file with a mood track and writes a WAV.
//
//	moodmix [-gain 0.15] <voice.{wav|mp3|ogg|aiff}> <mood.{wav|mp3|ogg|aiff}> <out.wav>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ik5/moodmix"
	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats"
)

func main() {
	opts := moodmix.DefaultOptions()
	gain := flag.Float64("gain", float64(opts.SecondaryGain), "mood track gain")
	voiceGain := flag.Float64("voice-gain", float64(opts.PrimaryGain), "voice gain")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: moodmix [flags] <voice> <mood> <out.wav>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	opts.PrimaryGain = audio.Gain(*voiceGain)
	opts.SecondaryGain = audio.Gain(*gain)

	if err := run(flag.Arg(0), flag.Arg(1), flag.Arg(2), opts); err != nil {
		fmt.Fprintln(os.Stderr, "moodmix:", err)
		os.Exit(1)
	}
}

func run(voicePath, moodPath, outPath string, opts moodmix.Options) error {
	voice, err := open(voicePath)
	if err != nil {
		return err
	}
	defer voice.Close()

	mood, err := open(moodPath)
	if err != nil {
		return err
	}
	defer mood.Close()

	out, err := moodmix.MixToWAV(voice, mood, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}

	fmt.Println("Wrote:", outPath)

	return nil
}

// open decodes a whole file, using its name when the content cannot be
// sniffed.
func open(path string) (audio.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	src, err := formats.Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}
