package keycodec

import (
	"bytes"
	"fmt"
)

// Flag is the final byte of every key. It records whether the key belongs to
// an entity or an edge and, for edges, the edge's directedness and whether
// the row vertex is the source (correct way) or the destination.
type Flag byte

const (
	FlagEntity                     Flag = 1
	FlagCorrectWayDirectedEdge     Flag = 2
	FlagCorrectWayUndirectedEdge   Flag = 3
	FlagIncorrectWayDirectedEdge   Flag = 4
	FlagIncorrectWayUndirectedEdge Flag = 5
)

// Valid reports whether f is one of the five defined flags.
func (f Flag) Valid() bool { return f >= FlagEntity && f <= FlagIncorrectWayUndirectedEdge }

// IsEdge reports whether f is any edge flag.
func (f Flag) IsEdge() bool { return f.Valid() && f != FlagEntity }

// IsDirected reports whether f is a directed edge flag.
func (f Flag) IsDirected() bool {
	return f == FlagCorrectWayDirectedEdge || f == FlagIncorrectWayDirectedEdge
}

// IsUndirected reports whether f is an undirected edge flag.
func (f Flag) IsUndirected() bool {
	return f == FlagCorrectWayUndirectedEdge || f == FlagIncorrectWayUndirectedEdge
}

// IsCorrectWay reports whether the row vertex of the key is the edge source.
func (f Flag) IsCorrectWay() bool {
	return f == FlagCorrectWayDirectedEdge || f == FlagCorrectWayUndirectedEdge
}

func (f Flag) String() string {
	switch f {
	case FlagEntity:
		return "ENTITY"
	case FlagCorrectWayDirectedEdge:
		return "CORRECT_WAY_DIRECTED_EDGE"
	case FlagCorrectWayUndirectedEdge:
		return "CORRECT_WAY_UNDIRECTED_EDGE"
	case FlagIncorrectWayDirectedEdge:
		return "INCORRECT_WAY_DIRECTED_EDGE"
	case FlagIncorrectWayUndirectedEdge:
		return "INCORRECT_WAY_UNDIRECTED_EDGE"
	default:
		return fmt.Sprintf("Flag(%d)", byte(f))
	}
}

// FlagOf returns the trailing byte of key without decoding anything else.
// ok is false only for an empty key; the returned flag may still be invalid.
func FlagOf(key []byte) (f Flag, ok bool) {
	if len(key) == 0 {
		return 0, false
	}
	return Flag(key[len(key)-1]), true
}

func edgeFlags(directed bool) (correct, incorrect Flag) {
	if directed {
		return FlagCorrectWayDirectedEdge, FlagIncorrectWayDirectedEdge
	}
	return FlagCorrectWayUndirectedEdge, FlagIncorrectWayUndirectedEdge
}

// GroupOf extracts the group name from a key without consulting a schema or
// decoding vertices. ok is false when the key is not well formed.
func GroupOf(key []byte) (group string, ok bool) {
	flag, ok := FlagOf(key)
	if !ok || !flag.Valid() {
		return "", false
	}
	want := 4
	if flag == FlagEntity {
		want = 3
	}
	body := key[:len(key)-1]
	if len(body) == 0 || body[len(body)-1] != Delimiter {
		return "", false
	}
	fields := bytes.Split(body[:len(body)-1], []byte{Delimiter})
	if len(fields) != want {
		return "", false
	}
	g, err := Unescape(fields[want-2])
	if err != nil {
		return "", false
	}
	return string(g), true
}
