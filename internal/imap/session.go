package imap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	imap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/igbanam/himalaya/internal/msg"
	"github.com/igbanam/himalaya/internal/seqset"
)

// Detail controls how much of a message Fetch retrieves.
type Detail int

const (
	// DetailSummary fetches envelope headers and flags only.
	DetailSummary Detail = iota
	// DetailFull fetches the entire MIME body and parses it.
	DetailFull
)

// Option is a functional option for Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session owns a single IMAP connection and exposes mailbox operations.
// It moves through Disconnected -> Connected -> Selected; all
// sequence-addressed operations require Selected. A Session is exclusively
// owned by the invocation that created it and is not safe for concurrent use.
type Session struct {
	config   *Config
	password string
	logger   *slog.Logger

	conn     *imapclient.Client
	selected string

	// updates receives a signal whenever the server reports a mailbox
	// change during IDLE. Buffered so the handler never blocks the
	// client's read loop.
	updates chan struct{}
}

// NewSession creates a disconnected session.
func NewSession(cfg *Config, password string, opts ...Option) *Session {
	s := &Session{
		config:   cfg,
		password: password,
		logger:   slog.Default(),
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials and authenticates. Connecting an already-connected session
// is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := s.config.Addr()
	s.logger.Debug("connecting to IMAP server", "addr", addr, "tls", s.config.TLS, "starttls", s.config.STARTTLS)

	imapOpts := &imapclient.Options{
		UnilateralDataHandler: &imapclient.UnilateralDataHandler{
			Mailbox: s.mailboxUpdate,
		},
	}
	var (
		conn *imapclient.Client
		err  error
	)
	if s.config.TLS {
		conn, err = imapclient.DialTLS(addr, imapOpts)
	} else if s.config.STARTTLS {
		conn, err = imapclient.DialStartTLS(addr, imapOpts)
	} else {
		conn, err = imapclient.DialInsecure(addr, imapOpts)
	}
	if err != nil {
		return &ConnectionError{Addr: addr, Err: err}
	}

	if err := conn.Login(s.config.Username, s.password).Wait(); err != nil {
		_ = conn.Close()
		return &ConnectionError{Addr: addr, Err: fmt.Errorf("login: %w", err)}
	}

	s.conn = conn
	s.selected = ""
	s.logger.Debug("connected and authenticated", "user", s.config.Username)
	return nil
}

func (s *Session) mailboxUpdate(data *imapclient.UnilateralDataMailbox) {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Select chooses the mailbox subsequent operations address.
func (s *Session) Select(ctx context.Context, mailbox string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	if s.selected == mailbox {
		return nil
	}
	if _, err := s.conn.Select(mailbox, nil).Wait(); err != nil {
		return fmt.Errorf("SELECT %q: %w", mailbox, err)
	}
	s.selected = mailbox
	return nil
}

// Mailbox returns the currently selected mailbox name, or "".
func (s *Session) Mailbox() string { return s.selected }

func (s *Session) requireSelected() error {
	if s.conn == nil {
		return ErrNotConnected
	}
	if s.selected == "" {
		return ErrNotSelected
	}
	return nil
}

// ListMailboxes returns the names of all selectable mailboxes.
func (s *Session) ListMailboxes(ctx context.Context) ([]string, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	items, err := s.conn.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("LIST: %w", err)
	}
	var names []string
	for _, item := range items {
		if hasAttr(item.Attrs, imap.MailboxAttrNoSelect) {
			continue
		}
		names = append(names, item.Mailbox)
	}
	sort.Strings(names)
	return names, nil
}

// hasAttr checks whether attr is in the attrs list.
func hasAttr(attrs []imap.MailboxAttr, attr imap.MailboxAttr) bool {
	for _, a := range attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// Search runs a protocol-native text search against the selected mailbox.
// An empty query matches every message. An empty result is not an error.
func (s *Session) Search(ctx context.Context, query string) (*seqset.SeqRange, error) {
	if err := s.requireSelected(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	criteria := &imap.SearchCriteria{}
	if query != "" {
		criteria.Text = []string{query}
	}
	data, err := s.conn.Search(criteria, &imap.SearchOptions{ReturnAll: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("SEARCH: %w", err)
	}
	return seqset.FromNums(data.AllSeqNums()...), nil
}

// toSeqSet converts a normalized SeqRange to the wire form.
func toSeqSet(r *seqset.SeqRange) imap.SeqSet {
	return imap.SeqSetNum(r.Nums()...)
}

// Fetch retrieves the addressed messages, ordered by ascending sequence
// number regardless of input token order.
func (s *Session) Fetch(ctx context.Context, set *seqset.SeqRange, detail Detail) ([]*msg.Msg, error) {
	if err := s.requireSelected(); err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := &imap.FetchOptions{
		UID:      true,
		Flags:    true,
		Envelope: true,
	}
	var bodySection *imap.FetchItemBodySection
	if detail == DetailFull {
		bodySection = &imap.FetchItemBodySection{Peek: true}
		opts.BodySection = []*imap.FetchItemBodySection{bodySection}
	}

	bufs, err := s.conn.Fetch(toSeqSet(set), opts).Collect()
	if err != nil {
		return nil, fmt.Errorf("FETCH %s: %w", set, err)
	}

	msgs := make([]*msg.Msg, 0, len(bufs))
	for _, buf := range bufs {
		m, err := s.fromBuffer(buf, bodySection)
		if err != nil {
			s.logger.Warn("skipping unparsable message", "seq", buf.SeqNum, "error", err)
			continue
		}
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })
	return msgs, nil
}

// fromBuffer builds a Msg from a fetch response. With a body section the
// raw MIME is parsed; envelope data fills what remains.
func (s *Session) fromBuffer(buf *imapclient.FetchMessageBuffer, bodySection *imap.FetchItemBodySection) (*msg.Msg, error) {
	var m *msg.Msg
	if bodySection != nil {
		raw := buf.FindBodySection(bodySection)
		if len(raw) > 0 {
			parsed, err := msg.Parse(raw)
			if err != nil {
				return nil, err
			}
			m = parsed
		}
	}
	if m == nil {
		m = &msg.Msg{}
	}

	m.Seq = buf.SeqNum
	m.UID = uint32(buf.UID)
	for _, flag := range buf.Flags {
		m.Flags = append(m.Flags, string(flag))
	}

	if env := buf.Envelope; env != nil {
		if m.Subject == "" {
			m.Subject = env.Subject
		}
		if m.Date.IsZero() {
			m.Date = env.Date
		}
		if m.MessageID == "" {
			m.MessageID = env.MessageID
		}
		if len(m.From) == 0 {
			m.From = fromImapAddrs(env.From)
		}
		if len(m.To) == 0 {
			m.To = fromImapAddrs(env.To)
		}
		if len(m.Cc) == 0 {
			m.Cc = fromImapAddrs(env.Cc)
		}
		if len(m.ReplyTo) == 0 {
			m.ReplyTo = fromImapAddrs(env.ReplyTo)
		}
	}
	return m, nil
}

func fromImapAddrs(addrs []imap.Address) []msg.Address {
	out := make([]msg.Address, 0, len(addrs))
	for _, a := range addrs {
		if a.Mailbox == "" || a.Host == "" {
			continue
		}
		out = append(out, msg.Address{Name: a.Name, Email: a.Addr()})
	}
	return out
}

// FetchOne retrieves a single message in full. It fails with NotFoundError
// when seq is absent from the mailbox.
func (s *Session) FetchOne(ctx context.Context, seq uint32) (*msg.Msg, error) {
	if _, err := s.resolveUIDs(ctx, seqset.FromNums(seq)); err != nil {
		return nil, err
	}
	msgs, err := s.Fetch(ctx, seqset.FromNums(seq), DetailFull)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, &NotFoundError{Seq: seq, Mailbox: s.selected}
	}
	return msgs[0], nil
}

// resolveUIDs maps every member of set to its UID, failing with
// NotFoundError if any member is absent. Mutating operations resolve first
// so a partially-invalid range mutates nothing.
func (s *Session) resolveUIDs(ctx context.Context, set *seqset.SeqRange) (imap.UIDSet, error) {
	if err := s.requireSelected(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.conn.Search(&imap.SearchCriteria{}, &imap.SearchOptions{ReturnAll: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("SEARCH: %w", err)
	}
	if n, absent := firstAbsent(set, data.AllSeqNums()); absent {
		return nil, &NotFoundError{Seq: n, Mailbox: s.selected}
	}

	bufs, err := s.conn.Fetch(toSeqSet(set), &imap.FetchOptions{UID: true}).Collect()
	if err != nil {
		return nil, fmt.Errorf("FETCH %s (uid): %w", set, err)
	}
	if len(bufs) < set.Len() {
		return nil, &NotFoundError{Seq: set.Nums()[len(bufs)], Mailbox: s.selected}
	}
	var uids imap.UIDSet
	for _, buf := range bufs {
		uids.AddNum(buf.UID)
	}
	return uids, nil
}

// firstAbsent returns the lowest member of set missing from the mailbox's
// sequence numbers, if any. A single absent member fails the whole set, so
// a partially-invalid range never reaches a mutating command.
func firstAbsent(set *seqset.SeqRange, mailbox []uint32) (uint32, bool) {
	present := make(map[uint32]struct{}, len(mailbox))
	for _, n := range mailbox {
		present[n] = struct{}{}
	}
	for _, n := range set.Nums() {
		if _, ok := present[n]; !ok {
			return n, true
		}
	}
	return 0, false
}

// SetFlags replaces the flag set on each addressed message.
func (s *Session) SetFlags(ctx context.Context, set *seqset.SeqRange, flags *FlagSet) error {
	return s.storeFlags(ctx, set, imap.StoreFlagsSet, flags)
}

// AddFlags adds flags to each addressed message (set union).
func (s *Session) AddFlags(ctx context.Context, set *seqset.SeqRange, flags *FlagSet) error {
	return s.storeFlags(ctx, set, imap.StoreFlagsAdd, flags)
}

// RemoveFlags removes flags from each addressed message (set difference).
func (s *Session) RemoveFlags(ctx context.Context, set *seqset.SeqRange, flags *FlagSet) error {
	return s.storeFlags(ctx, set, imap.StoreFlagsDel, flags)
}

func (s *Session) storeFlags(ctx context.Context, set *seqset.SeqRange, op imap.StoreFlagsOp, flags *FlagSet) error {
	if err := s.requireSelected(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.conn.Store(toSeqSet(set), &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  flags.Flags(),
	}, nil).Close(); err != nil {
		return fmt.Errorf("STORE %s: %w", set, err)
	}
	return nil
}

// Copy duplicates the addressed messages into target. All-or-nothing: a
// range containing an absent member copies nothing.
func (s *Session) Copy(ctx context.Context, set *seqset.SeqRange, target string) error {
	uids, err := s.resolveUIDs(ctx, set)
	if err != nil {
		return err
	}
	if _, err := s.conn.Copy(uids, target).Wait(); err != nil {
		return fmt.Errorf("COPY to %q: %w", target, err)
	}
	return nil
}

// Move transfers the addressed messages into target. All-or-nothing, like
// Copy. Servers without MOVE get the copy+delete+expunge fallback from the
// underlying client.
func (s *Session) Move(ctx context.Context, set *seqset.SeqRange, target string) error {
	uids, err := s.resolveUIDs(ctx, set)
	if err != nil {
		return err
	}
	if _, err := s.conn.Move(uids, target).Wait(); err != nil {
		return fmt.Errorf("MOVE to %q: %w", target, err)
	}
	return nil
}

// Delete marks the addressed messages deleted and expunges them.
func (s *Session) Delete(ctx context.Context, set *seqset.SeqRange) error {
	uids, err := s.resolveUIDs(ctx, set)
	if err != nil {
		return err
	}
	if err := s.conn.Store(uids, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}, nil).Close(); err != nil {
		return fmt.Errorf("UID STORE \\Deleted: %w", err)
	}
	if err := s.conn.UIDExpunge(uids).Close(); err != nil {
		return fmt.Errorf("UID EXPUNGE: %w", err)
	}
	return nil
}

// Append stores a transient raw message into mailbox without going through
// delivery, e.g. a sent copy.
func (s *Session) Append(ctx context.Context, mailbox string, raw []byte, flags *FlagSet) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	opts := &imap.AppendOptions{}
	if flags != nil {
		opts.Flags = flags.Flags()
	}
	cmd := s.conn.Append(mailbox, int64(len(raw)), opts)
	if _, err := cmd.Write(raw); err != nil {
		_ = cmd.Close()
		return fmt.Errorf("APPEND to %q: %w", mailbox, err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("APPEND to %q: %w", mailbox, err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("APPEND to %q: %w", mailbox, err)
	}
	return nil
}

// Logout releases the connection. Safe to call on every exit path: a second
// call, or a call on a never-connected session, is a no-op.
func (s *Session) Logout() error {
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	s.selected = ""
	return conn.Logout().Wait()
}
