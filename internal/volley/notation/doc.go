// File: doc.go
// Title: Notation Package Documentation
// Description: Parser for the compact rally notation typed by scorekeepers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

/*
Package notation turns one rally string into an ordered list of actions.

A rally is a sequence of tokens separated by single spaces. Every token has
the shape

	<team prefix> <player: 1-2 digits> <action code> [modifiers]

The first token must be a serve:

	S [position A-F] [zone]

Every later token is one of:

	R [height L|M|H] [zone]   receive
	P [height L|M|H] [zone]   pass
	E                         set
	H [zone]                  hit
	B <team prefix> [zone]    block
	F [zone]                  freeball

A zone is a court digit 1-9 optionally followed by a subzone A-D, or one of
'0' (out of bounds), 'N' (net) and 'V' (overpass).

Parsing is pure and fails fast: the first defective token aborts the parse
with a *Reason naming the defect and the token index.
*/
package notation
