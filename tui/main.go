// Command tui plays air hockey against the computer in a terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airhockey/hockey"

	"github.com/gdamore/tcell/v2"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	// The terminal belongs to the screen; log to a file unless told otherwise.
	flag.Set("logtostderr", "false")
	flag.Set("log_file", filepath.Join(os.TempDir(), "airhockey-tui.log"))

	difficulty := flag.String("difficulty", "normal", "opponent difficulty: easy, normal or hard")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	mute := flag.Bool("mute", false, "start with sound off")
	flag.Parse()
	defer klog.Flush()

	if err := run(*difficulty, *seed, *mute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		klog.Flush()
		os.Exit(1)
	}
}

func run(difficulty string, seed uint64, mute bool) error {
	d, err := hockey.ParseDifficulty(difficulty)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	cfg := hockey.DefaultConfig().WithDifficulty(d)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	var sound tonePlayer
	if sp, err := newSpeakerPlayer(); err != nil {
		klog.Warningf("audio disabled: %v", err)
	} else {
		defer sp.Close()
		sound = sp
	}

	app, err := newApp(screen, cfg, hockey.NewRand(seed), sound)
	if err != nil {
		return err
	}
	app.muted = mute
	klog.Infof("match started: difficulty=%v seed=%d", d, seed)
	app.run()
	return nil
}
