package parse

// state is the carry-over state of a single parse. It is created by
// ParseLines and dropped when it returns.
type state struct {
	p *Parser

	pendingTimestamp string
	hasTimestamp     bool
	pendingSpeaker   string

	turns []Turn
}

func newState(p *Parser) *state {
	return &state{p: p}
}

func (st *state) apply(l Line, lineNo int) {
	switch l.Kind {
	case KindNoMatch, KindHeader:
		return
	case KindCue, KindTimestampOnly:
		if l.HasTimestamp {
			st.setTimestamp(l.Timestamp)
		}
		return
	}

	if l.HasTimestamp {
		st.setTimestamp(l.Timestamp)
	}
	if l.Speaker != "" {
		st.pendingSpeaker = l.Speaker
	}
	if l.Text != "" {
		st.emit(l.Text, lineNo)
	}
}

// setTimestamp replaces any unconsumed pending timestamp.
func (st *state) setTimestamp(ts Timestamp) {
	st.pendingTimestamp = Normalize(ts, st.p.opts.ShiftSeconds, st.p.opts.TimeFormat)
	st.hasTimestamp = true
}

func (st *state) clearPending() {
	st.pendingTimestamp = ""
	st.hasTimestamp = false
	st.pendingSpeaker = ""
}

// emit attaches a meaningful fragment to the transcript. Without a pending
// speaker the fragment continues the previous turn, or is dropped when there
// is none.
func (st *state) emit(fragment string, lineNo int) {
	defer st.clearPending()

	fragment = st.p.Anonymize(fragment)
	speaker := st.p.MapRole(st.pendingSpeaker)

	last := len(st.turns) - 1
	if speaker == "" {
		if last < 0 {
			return
		}
		st.merge(last, fragment)
		return
	}
	if last >= 0 && st.turns[last].Speaker == speaker {
		st.merge(last, fragment)
		return
	}

	t := Turn{Speaker: speaker, Quote: fragment, Line: lineNo}
	if st.hasTimestamp {
		t.Timestamp = st.pendingTimestamp
	}
	restoreInvariants(&t)
	st.turns = append(st.turns, t)
}

func (st *state) merge(i int, fragment string) {
	t := &st.turns[i]
	t.Quote += " " + fragment
	restoreInvariants(t)
}

// finish collapses adjacent turns of the same speaker, then enforces the
// client timestamp rule and computes tags.
func (st *state) finish() []Turn {
	out := make([]Turn, 0, len(st.turns))
	for _, t := range st.turns {
		if n := len(out); n > 0 && out[n-1].Speaker == t.Speaker {
			out[n-1].Quote += " " + t.Quote
			continue
		}
		out = append(out, t)
	}
	for i := range out {
		restoreInvariants(&out[i])
		out[i].Tag = tagFor(out[i])
	}
	return out
}

// restoreInvariants blanks client timestamps.
func restoreInvariants(t *Turn) {
	if t.Speaker == RoleClient {
		t.Timestamp = ""
	}
}

func tagFor(t Turn) string {
	if t.Speaker == RoleCounselor && WordCount(t.Quote) <= maxTagWords {
		return TagMinimalEncourager
	}
	return ""
}
