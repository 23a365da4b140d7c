package input

import (
	"bufio"
	"bytes"
	"strconv"
)

// Terminal bytes handled by the parser.
const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Lines scrolled per page key.
const pageLines = 10

// Input is everything that happened since the previous frame.
type Input struct {
	Quit    bool
	Restart bool

	// Scroll is the net number of lines scrolled, positive downward.
	Scroll int

	// Moved reports a pointer event; Col and Row hold its 1-based cell.
	Moved bool
	Col   int
	Row   int

	// Click reports a primary-button press.
	Click bool
}

// Stream delivers input bytes via a channel and keeps any incomplete escape
// sequence until the rest of it arrives.
type Stream struct {
	ch      chan byte
	pending []byte
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 256)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// parses them. A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in, rest := Parse(buf)
	if len(rest) > 0 {
		s.pending = append([]byte(nil), rest...)
	}
	if s.closed {
		in.Quit = true
	}
	return in
}

// Parse folds raw terminal bytes into an Input. It returns any trailing bytes
// that form the start of an unfinished escape sequence.
func Parse(buf []byte) (Input, []byte) {
	var in Input

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != keyEscape {
			applyKey(&in, b)
			continue
		}

		// ESC alone, or ESC followed by anything but CSI.
		if i+1 >= len(buf) {
			// A lone trailing ESC is most likely a partial sequence.
			return in, buf[i:]
		}
		if buf[i+1] != '[' {
			continue
		}

		n, complete := parseCSI(&in, buf[i+2:])
		if !complete {
			return in, buf[i:]
		}
		i += 1 + n
	}
	return in, nil
}

// parseCSI handles the bytes after "ESC [". It returns how many bytes it
// consumed and whether the sequence was complete.
func parseCSI(in *Input, seq []byte) (int, bool) {
	if len(seq) == 0 {
		return 0, false
	}

	switch seq[0] {
	case 'A':
		in.Scroll--
		return 1, true
	case 'B':
		in.Scroll++
		return 1, true
	case 'C', 'D', 'H', 'F':
		return 1, true
	case '<':
		return parseMouse(in, seq)
	}

	// Generic CSI: parameters then a final byte in 0x40..0x7e.
	for j, c := range seq {
		if c >= 0x40 && c <= 0x7e {
			switch string(seq[:j+1]) {
			case "5~":
				in.Scroll -= pageLines
			case "6~":
				in.Scroll += pageLines
			}
			return j + 1, true
		}
	}
	return 0, false
}

// parseMouse decodes an SGR mouse report "<b;x;y" ending in M (press or
// motion) or m (release).
func parseMouse(in *Input, seq []byte) (int, bool) {
	end := bytes.IndexAny(seq, "Mm")
	if end < 0 {
		// Garbage without a terminator is dropped once it is clearly too long.
		if len(seq) > 32 {
			return len(seq), true
		}
		return 0, false
	}

	fields := bytes.Split(seq[1:end], []byte{';'})
	if len(fields) != 3 {
		return end + 1, true
	}
	var vals [3]int
	for k, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return end + 1, true
		}
		vals[k] = v
	}
	button, col, row := vals[0], vals[1], vals[2]
	press := seq[end] == 'M'

	switch {
	case button&64 != 0:
		// Wheel: 64 up, 65 down.
		if press {
			if button&1 == 0 {
				in.Scroll--
			} else {
				in.Scroll++
			}
		}
	default:
		in.Moved = true
		in.Col = col
		in.Row = row
		if press && button&32 == 0 && button&3 == 0 {
			in.Click = true
		}
	}
	return end + 1, true
}

// applyKey updates the input for a single plain byte.
func applyKey(in *Input, b byte) {
	switch b {
	case 'q', 'Q', keyCtrlC:
		in.Quit = true
	case 'r', 'R':
		in.Restart = true
	case 'j', 'J':
		in.Scroll++
	case 'k', 'K':
		in.Scroll--
	}
}
