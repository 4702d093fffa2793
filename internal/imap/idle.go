package imap

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	imap "github.com/emersion/go-imap/v2"

	"github.com/igbanam/himalaya/internal/msg"
)

// Hook is invoked by Notify once per newly-arrived message.
type Hook func(m *msg.Msg) error

// Watch blocks on the server's IDLE mechanism until ctx is canceled,
// re-issuing IDLE every keepalive interval. Servers drop idle clients after
// ~30 minutes, so keepalive must stay below that. No events are surfaced.
// On cancellation the context's error is returned so callers can tell an
// interrupt from a protocol failure.
func (s *Session) Watch(ctx context.Context, keepalive time.Duration) error {
	if err := s.requireSelected(); err != nil {
		return err
	}
	s.logger.Debug("watching mailbox", "mailbox", s.selected, "keepalive", keepalive)
	for {
		if err := s.idleCycle(ctx, keepalive); err != nil {
			return err
		}
	}
}

// idleCycle issues one IDLE and blocks until the keepalive interval elapses,
// the server reports activity, or ctx is canceled. Returns ctx.Err() on
// cancellation.
func (s *Session) idleCycle(ctx context.Context, keepalive time.Duration) error {
	idle, err := s.conn.Idle()
	if err != nil {
		return fmt.Errorf("IDLE: %w", err)
	}

	timer := time.NewTimer(keepalive)
	defer timer.Stop()

	var cause error
	select {
	case <-ctx.Done():
		cause = ctx.Err()
	case <-timer.C:
		// keepalive elapsed, re-issue without surfacing an event
	case <-s.updates:
	}

	if err := errors.Join(idle.Close(), idle.Wait()); err != nil && cause == nil {
		return fmt.Errorf("end IDLE: %w", err)
	}
	return cause
}

// Notify runs like Watch but fires hook once per newly-seen message. A
// message is new iff its UID was absent from the previous snapshot; flag
// changes never re-notify.
func (s *Session) Notify(ctx context.Context, keepalive time.Duration, hook Hook) error {
	if err := s.requireSelected(); err != nil {
		return err
	}

	snapshot, err := s.uidSnapshot(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("notify loop started", "mailbox", s.selected, "messages", len(snapshot))

	for {
		if err := s.idleCycle(ctx, keepalive); err != nil {
			return err
		}

		current, err := s.uidSnapshot(ctx)
		if err != nil {
			return err
		}
		fresh := newUIDs(snapshot, current)
		if len(fresh) > 0 {
			if err := s.notifyNew(ctx, fresh, hook); err != nil {
				return err
			}
		}
		snapshot = current
	}
}

// uidSnapshot returns the UID set of the selected mailbox.
func (s *Session) uidSnapshot(ctx context.Context) (map[uint32]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.conn.UIDSearch(&imap.SearchCriteria{}, &imap.SearchOptions{ReturnAll: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("UID SEARCH: %w", err)
	}
	snapshot := make(map[uint32]struct{})
	for _, uid := range data.AllUIDs() {
		snapshot[uint32(uid)] = struct{}{}
	}
	return snapshot, nil
}

// newUIDs returns the UIDs present in current but not in prior, ascending.
func newUIDs(prior, current map[uint32]struct{}) []uint32 {
	var fresh []uint32
	for uid := range current {
		if _, ok := prior[uid]; !ok {
			fresh = append(fresh, uid)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
	return fresh
}

// notifyNew fetches the summaries of the given UIDs and invokes hook for
// each. Hook errors abort the loop.
func (s *Session) notifyNew(ctx context.Context, uids []uint32, hook Hook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	set := imap.UIDSet{}
	for _, uid := range uids {
		set.AddNum(imap.UID(uid))
	}
	bufs, err := s.conn.Fetch(set, &imap.FetchOptions{
		UID:      true,
		Flags:    true,
		Envelope: true,
	}).Collect()
	if err != nil {
		return fmt.Errorf("FETCH new messages: %w", err)
	}
	for _, buf := range bufs {
		m, err := s.fromBuffer(buf, nil)
		if err != nil {
			s.logger.Warn("skipping unparsable arrival", "uid", buf.UID, "error", err)
			continue
		}
		s.logger.Debug("new message", "uid", m.UID, "subject", m.Subject)
		if err := hook(m); err != nil {
			return fmt.Errorf("notification hook: %w", err)
		}
	}
	return nil
}
