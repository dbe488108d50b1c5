package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"foodbot/infra/logging"
	"foodbot/service"
)

// ErrNoReply means the message was not a command for this bot.
var ErrNoReply = errors.New("command: no reply")

type Message struct {
	User string
	Text string
	// Direct messages need no bot-name prefix.
	Direct bool
}

// Reply is one outgoing chat line. Mention replies are addressed to the
// sender; the others go to the room.
type Reply struct {
	Text    string
	Mention bool
}

func send(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...)}
}

func reply(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...), Mention: true}
}

type Handler struct {
	bot     string
	addr    *regexp.Regexp
	mgr     *service.Manager
	timeout time.Duration
	log     *zap.Logger
}

func NewHandler(bot string, mgr *service.Manager, timeout time.Duration, log *zap.Logger) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{
		bot:     bot,
		addr:    regexp.MustCompile(`(?i)^\s*@?` + regexp.QuoteMeta(bot) + `[:,]?\s+(.*)$`),
		mgr:     mgr,
		timeout: timeout,
		log:     logging.OrNop(log),
	}
}

// Handle runs one chat message. It returns ErrNoReply when the message is
// not addressed to the bot or is not a food command.
func (h *Handler) Handle(ctx context.Context, msg Message) ([]Reply, error) {
	body := msg.Text
	if !msg.Direct {
		m := h.addr.FindStringSubmatch(msg.Text)
		if m == nil {
			return nil, ErrNoReply
		}
		body = m[1]
	}

	cmd := Parse(body)
	if cmd.Kind == KindNone {
		return nil, ErrNoReply
	}
	h.log.Debug("command",
		zap.Stringer("kind", cmd.Kind),
		zap.String("order", cmd.Order),
		zap.String("user", msg.User),
	)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	switch cmd.Kind {
	case KindHelp:
		return h.help(), nil
	case KindStart:
		return h.start(ctx, cmd), nil
	case KindFor:
		return h.order(ctx, msg.User, cmd), nil
	case KindCheck:
		return h.check(ctx, cmd), nil
	case KindEnd:
		return h.end(ctx, cmd), nil
	}
	return nil, ErrNoReply
}

func (h *Handler) help() []Reply {
	lines := []string{
		"Help track a food order with the following commands:",
		fmt.Sprintf(`  Start an order: @%s food start "{order name}"[ from {some restaurant}]`, h.bot),
		fmt.Sprintf(`  Add/change your request: @%s food for "{order name}" get me [your request]`, h.bot),
		fmt.Sprintf(`  Check the order requests: @%s food check "{order name}"`, h.bot),
		fmt.Sprintf(`  Finish ordering and get the final list: @%s food end "{order name}"`, h.bot),
	}
	return []Reply{send("%s", strings.Join(lines, "\n"))}
}

func (h *Handler) start(ctx context.Context, cmd Command) []Reply {
	if cmd.Order == "" {
		return []Reply{reply(`I didn't see an order name. Try `+"`@%s food start \"{order name}\"`", h.bot)}
	}
	if !h.mgr.StartOrder(cmd.Order, cmd.Restaurant) {
		return []Reply{reply("I'm already tracking an order by that name.")}
	}

	out := []Reply{send(
		`Hey, @here! I'm taking orders for "%s". Add your order with `+"`@%s food for \"%s\" get me [something tasty]`",
		cmd.Order, h.bot, cmd.Order,
	)}
	return h.persist(ctx, h.mgr.Save, out)
}

func (h *Handler) order(ctx context.Context, user string, cmd Command) []Reply {
	if user == "" || cmd.Order == "" || strings.TrimSpace(cmd.Text) == "" {
		return []Reply{reply("I don't understand your order request")}
	}
	if !h.mgr.HasOrder(cmd.Order) {
		return []Reply{reply(`Sorry, I'm not taking orders for "%s" right now.`, cmd.Order)}
	}
	if !h.mgr.SetEntry(cmd.Order, user, cmd.Text) {
		return []Reply{reply("Weird, I couldn't store your order.")}
	}
	return h.persist(ctx, h.mgr.Sync, []Reply{reply("I got your order!")})
}

func (h *Handler) check(ctx context.Context, cmd Command) []Reply {
	if cmd.Order == "" {
		names := h.mgr.OrderNames()
		if len(names) == 0 {
			return []Reply{reply("I'm not currently tracking any orders.")}
		}
		return []Reply{reply("Current food orders:\n  %s", strings.Join(names, "\n  "))}
	}

	if !h.mgr.HasOrder(cmd.Order) {
		return []Reply{reply("I am not tracking an order by the name: %s", cmd.Order)}
	}
	header := fmt.Sprintf(`The current list of orders for "%s"%s is:`, cmd.Order, h.from(cmd.Order))

	got := make(chan []Reply, 1)
	ok := h.mgr.Peek(cmd.Order, func(entries []string) {
		got <- []Reply{send("%s", listing(header, entries))}
	})
	if !ok {
		return []Reply{h.listProblem(cmd.Order)}
	}
	out, _ := h.await(ctx, cmd.Order, got)
	return out
}

// end lists the order, then closes and saves it from the listing callback.
// If the listing times out the user is told there was a problem, but the
// callback still runs once earlier entries resolve and the order is closed
// then; that late close is logged.
func (h *Handler) end(ctx context.Context, cmd Command) []Reply {
	if !h.mgr.HasOrder(cmd.Order) {
		return []Reply{reply("I am not tracking an order by the name: %s", cmd.Order)}
	}
	header := fmt.Sprintf(`The list of orders for "%s"%s is:`, cmd.Order, h.from(cmd.Order))

	got := make(chan []Reply, 1)
	ok := h.mgr.Peek(cmd.Order, func(entries []string) {
		out := []Reply{send("%s", listing(header, entries))}
		h.mgr.EndOrdering(cmd.Order)
		out = h.persist(context.Background(), h.mgr.Save, out)
		got <- append(out, send(`The order for "%s" is now closed.`, cmd.Order))
	})
	if !ok {
		return []Reply{h.listProblem(cmd.Order)}
	}
	out, done := h.await(ctx, cmd.Order, got)
	if !done {
		go func() {
			<-got
			h.log.Warn("order closed after its listing timed out", zap.String("order", cmd.Order))
		}()
	}
	return out
}

// await waits for a listing callback. done is false when ctx ended first.
func (h *Handler) await(ctx context.Context, name string, got <-chan []Reply) (out []Reply, done bool) {
	select {
	case out := <-got:
		return out, true
	case <-ctx.Done():
		h.log.Warn("order listing timed out", zap.String("order", name), zap.Error(ctx.Err()))
		return []Reply{h.listProblem(name)}, false
	}
}

func (h *Handler) listProblem(name string) Reply {
	return reply(`I seem to be having some problems listing order "%s".`, name)
}

// persist runs save and, if it fails, warns the room the change may not
// survive a restart.
func (h *Handler) persist(ctx context.Context, save func(context.Context) error, out []Reply) []Reply {
	if err := save(ctx); err != nil {
		h.log.Error("persist orders", zap.Error(err))
		out = append(out, reply("Heads up, I couldn't save the order list. It may be lost if I restart."))
	}
	return out
}

func (h *Handler) from(name string) string {
	if r, ok := h.mgr.Restaurant(name); ok && r != "" {
		return fmt.Sprintf(" (from %s)", r)
	}
	return ""
}

func listing(header string, entries []string) string {
	if len(entries) == 0 {
		return header + "\n  (nobody has ordered yet)"
	}
	return header + "\n" + strings.Join(entries, "\n")
}
