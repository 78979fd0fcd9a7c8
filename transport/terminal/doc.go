// Package terminal provides a keyboard driver for merge2048.
//
// A Player reads keys and sends the matching moves to a service.GameService:
//
//	w  up
//	a  left
//	s  down
//	d  right
//	q  quit
//
// When the input is a terminal it is put in raw mode so each key press is
// read at once; otherwise input is read one line per key, which is how the
// tests drive it. The board is drawn after every move that changed it. An
// unknown key or a move that changes nothing prints a warning and prompts
// again without redrawing.
package terminal
