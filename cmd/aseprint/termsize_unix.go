//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

var csiWinSizeRe = regexp.MustCompile(`\[4;(\d+);(\d+)t`)

// kittyPixelSize asks the terminal for its pixel size with the CSI 14t
// escape. Kitty reports zero pixel dimensions through TIOCGWINSZ, so
// this is the only way to size image output there.
//
// https://sw.kovidgoyal.net/kitty/graphics-protocol/#getting-the-window-size
func kittyPixelSize(f *os.File, sz *unix.Winsize) {
	state, err := terminal.MakeRaw(int(f.Fd()))
	if err != nil {
		return
	}
	defer terminal.Restore(int(f.Fd()), state) // ignoring error

	fmt.Printf("\033[14t")

	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil || b[0] != 033 {
		return
	}
	// The remainder of the reply is <ESC>[4;<height>;<width>t.
	reader := bufio.NewReader(os.Stdin)
	s, err := reader.ReadString('t')
	if err != nil {
		return
	}
	matches := csiWinSizeRe.FindStringSubmatch(s)
	if len(matches) != 3 {
		return
	}
	height, errH := strconv.Atoi(matches[1])
	width, errW := strconv.Atoi(matches[2])
	if errH == nil && errW == nil {
		sz.Xpixel = uint16(width)
		sz.Ypixel = uint16(height)
	}
}

func GetTermSize() (TermSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		var sz *unix.Winsize
		if sz, err = unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ); err == nil {
			if sz.Xpixel == 0 && sz.Ypixel == 0 && os.Getenv("TERM") == "xterm-kitty" {
				kittyPixelSize(f, sz)
			}
			return TermSize{WSRow: uint(sz.Row), WSCol: uint(sz.Col), WSXPixel: uint(sz.Xpixel), WSYPixel: uint(sz.Ypixel)}, nil
		}
	}
	var w, h int
	if w, h, err = terminal.GetSize(0); err == nil {
		return TermSize{WSRow: uint(w), WSCol: uint(h)}, nil
	}
	return TermSize{}, err
}
