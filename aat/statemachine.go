package aat

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// Predefined glyph classes of extended state tables.
const (
	classEndOfText   = 0
	classOutOfBounds = 1
	classDeleted     = 2
	classEndOfLine   = 3
	firstUserClass   = 4
)

// Entry flags common to all state machine subtables.
const (
	flagDontAdvance = 0x4000
)

// MaxStateMachineSteps bounds the number of transitions a state machine may
// take per glyph of a run (plus one for end of text). Corrupt tables which
// never consume input are cut off at this limit.
const MaxStateMachineSteps = 64

// Entry is an entry of a state machine's entry table: the state to transition
// to, flags and up to two subtable specific action indices.
type Entry struct {
	NewState uint16
	Flags    uint16
	Args     [2]uint16
}

// StateTable is an extended state table ('STXHeader'), driving contextual,
// ligature, insertion and rearrangement subtables.
type StateTable struct {
	NClasses  int
	Classes   *LookupTable
	states    []byte // rows of NClasses 16-bit entry indices
	entries   []byte
	entrySize int
}

// parseStateTable decodes an extended state table at the start of c. The
// entries of the table carry nArgs 16-bit action indices.
func parseStateTable(c *ot.Cursor, nArgs int, numGlyphs int) (*StateTable, error) {
	c.Section("state table")
	st := &StateTable{
		NClasses:  int(c.U32()),
		entrySize: 4 + 2*nArgs,
	}
	classOffset := int(c.U32())
	stateOffset := int(c.U32())
	entryOffset := int(c.U32())
	if err := c.Err(); err != nil {
		return nil, err
	}
	if st.NClasses < firstUserClass || st.NClasses > 0xffff {
		return nil, errFormat("state table", "illegal number of classes %d", st.NClasses)
	}
	classes, err := ParseLookup(c.At(classOffset), numGlyphs)
	if err != nil {
		return nil, err
	}
	st.Classes = classes
	st.states = c.At(stateOffset).Data()
	st.entries = c.At(entryOffset).Data()
	if entryOffset > stateOffset {
		st.states = st.states[:min(len(st.states), entryOffset-stateOffset)]
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("morx state table with %d classes, %d states", st.NClasses,
		len(st.states)/(2*st.NClasses))
	return st, nil
}

// class returns the glyph class of gid.
func (st *StateTable) class(gid ot.GlyphIndex) int {
	if gid == DeletedGlyph {
		return classDeleted
	}
	if cl, ok := st.Classes.Lookup(gid); ok && int(cl) < st.NClasses {
		return int(cl)
	}
	return classOutOfBounds
}

// transition returns the entry for glyph class cl in state.
func (st *StateTable) transition(state, cl int) (Entry, error) {
	at := (state*st.NClasses + cl) * 2
	if at+2 > len(st.states) {
		return Entry{}, errFormat("state table", "state %d out of range", state)
	}
	inx := int(st.states[at])<<8 | int(st.states[at+1])
	return st.entry(inx)
}

func (st *StateTable) entry(inx int) (Entry, error) {
	at := inx * st.entrySize
	if at+st.entrySize > len(st.entries) {
		return Entry{}, errFormat("state table", "entry %d out of range", inx)
	}
	b := st.entries[at : at+st.entrySize]
	e := Entry{
		NewState: uint16(b[0])<<8 | uint16(b[1]),
		Flags:    uint16(b[2])<<8 | uint16(b[3]),
	}
	for i := 0; 4+2*i < len(b); i++ {
		e.Args[i] = uint16(b[4+2*i])<<8 | uint16(b[5+2*i])
	}
	return e, nil
}

// actionFunc performs the actions of entry e for the glyph at index. At the
// end of text, index is outside the glyph slice of the context.
type actionFunc func(ctx *context, e Entry, index int) error

// process runs the state machine over the glyphs of ctx, calling action for
// every transition. Glyphs may be inserted or deleted by action; the walker
// re-reads the run's length before every step. End of text is processed
// exactly once, even if its action inserts glyphs.
func (st *StateTable) process(ctx *context, reverse bool, action actionFunc) error {
	state, index, dir := 0, 0, 1
	if reverse {
		index, dir = len(ctx.glyphs)-1, -1
	}
	limit := MaxStateMachineSteps * (len(ctx.glyphs) + 1)
	for steps := 0; index >= -1 && index <= len(ctx.glyphs); steps++ {
		if steps >= limit {
			return errFormat("state machine", "no progress after %d steps", steps)
		}
		cl := classEndOfText
		eot := index < 0 || index == len(ctx.glyphs)
		if !eot {
			cl = st.class(ctx.glyphs[index].ID)
		}
		e, err := st.transition(state, cl)
		if err != nil {
			return err
		}
		advance := true
		if cl != classDeleted {
			if err := action(ctx, e, index); err != nil {
				return err
			}
			advance = eot || e.Flags&flagDontAdvance == 0
		}
		if eot {
			break
		}
		state = int(e.NewState)
		if advance {
			index += dir
		}
	}
	return nil
}

// traverse visits every transition reachable from state, calling enter when
// following a transition for glyph gid and exit when backtracking from it.
// Every state is expanded at most once. Predefined classes are skipped.
func (st *StateTable) traverse(state int, visited map[int]bool,
	enter func(gid ot.GlyphIndex, e Entry) error, exit func()) error {
	if visited[state] {
		return nil
	}
	visited[state] = true
	for cl := firstUserClass; cl < st.NClasses; cl++ {
		e, err := st.transition(state, cl)
		if err != nil {
			return err
		}
		for _, gid := range st.Classes.GlyphsForValue(uint16(cl)) {
			if err := enter(gid, e); err != nil {
				return err
			}
			if e.NewState != 0 {
				if err := st.traverse(int(e.NewState), visited, enter, exit); err != nil {
					return err
				}
			}
			exit()
		}
	}
	return nil
}

func (e Entry) String() string {
	return fmt.Sprintf("entry(→%d flags=%#04x args=%v)", e.NewState, e.Flags, e.Args)
}
