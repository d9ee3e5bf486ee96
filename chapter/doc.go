// Package chapter finds chapter headers in a Metamath database buffer.
//
// A chapter header is a comment whose first line is a horizontal rule of 79
// alternating '#' and '*' characters:
//
//	$(
//	#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#
//	  CHAPTER 1  PROPOSITIONAL CALCULUS
//
// Chapter headers are where the segmenter cuts a large database into
// independently verifiable pieces, so Find runs over the full file on every
// reload and is written to run at memory bandwidth.
//
// # Algorithm
//
// Find first hunts for the rule using aligned 32-bit words: it samples every
// 19th word (76 bytes), which is guaranteed to land inside any 79-byte run of
// the pattern whatever its alignment, and compares the word with the two
// possible 4-byte phases of the pattern. A hit is then validated byte-wise:
// back up to the start of the line, check the full rule, skip the line
// break and require a "$(" line in front of it. A rejected hit resumes the
// hunt one byte further on.
//
// Only this one marker convention is recognized. The package is not a
// general substring search.
package chapter
