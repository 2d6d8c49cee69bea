package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// View is something Render can lay out.
type View interface {
	render(s styles) string
}

type Labels struct {
	Categories *domain.CategoryTable
	Statuses   *domain.StatusTable
}

type productsView struct {
	products []domain.Product
	labels   Labels
}

func Products(products []domain.Product, labels Labels) View {
	return productsView{products: products, labels: labels}
}

func (v productsView) render(s styles) string {
	lines := []string{
		s.title.Render("Products"),
		s.header.Render(fmt.Sprintf("products: %d", len(v.products))),
	}

	if len(v.products) == 0 {
		lines = append(lines, s.empty.Render("No products listed."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, product := range v.products {
		lines = append(lines, s.section.Render(renderProductSummary(product, v.labels, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProductSummary(product domain.Product, labels Labels, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.item.Render(productTitle(product)),
		" ",
		s.price.Render(formatPrice(product.Price)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, s.detail.Render(productFacts(product, labels)))
}

type productView struct {
	product domain.Product
	labels  Labels
}

func Product(product domain.Product, labels Labels) View {
	return productView{product: product, labels: labels}
}

func (v productView) render(s styles) string {
	p := v.product
	lines := []string{
		s.title.Render(productTitle(p)),
		s.price.Render(formatPrice(p.Price)),
		field(s, "category", labelFor(v.labels.Categories, p.Category)),
		field(s, "status", labelFor(v.labels.Statuses, p.Status)),
		field(s, "condition", orNA(p.Condition)),
		field(s, "location", orNA(p.Location)),
		field(s, "images", strconv.Itoa(len(p.Images))),
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		lines = append(lines, s.section.Render(s.empty.Render("No description.")))
	} else {
		lines = append(lines, s.section.Render(s.detail.Render(description)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

type referenceView struct {
	title string
	table *domain.ReferenceTable[int, string]
}

// Reference lists an id to label table, ordered by id.
func Reference(title string, table *domain.ReferenceTable[int, string]) View {
	return referenceView{title: title, table: table}
}

func (v referenceView) render(s styles) string {
	lines := []string{
		s.title.Render(v.title),
		s.header.Render(fmt.Sprintf("entries: %d", v.table.Len())),
	}

	if v.table.Len() == 0 {
		lines = append(lines, s.empty.Render("Nothing to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	width := len(strconv.Itoa(v.table.Keys()[v.table.Len()-1]))
	for _, entry := range v.table.Entries() {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.key.Render(fmt.Sprintf("%*d", width, entry.Key)),
			"  ",
			s.detail.Render(entry.Value),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

type chatsView struct {
	chats []domain.ChatSummary
}

func Chats(chats []domain.ChatSummary) View {
	return chatsView{chats: chats}
}

func (v chatsView) render(s styles) string {
	unread := 0
	for _, chat := range v.chats {
		unread += chat.UnseenCount
	}

	lines := []string{
		s.title.Render("Conversations"),
		s.header.Render(fmt.Sprintf("conversations: %d, unread: %d", len(v.chats), unread)),
	}

	if len(v.chats) == 0 {
		lines = append(lines, s.empty.Render("No conversations yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, chat := range v.chats {
		lines = append(lines, s.section.Render(renderChat(chat, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderChat(chat domain.ChatSummary, s styles) string {
	title := fmt.Sprintf("%s (%s)", orNA(chat.ProductTitle), chat.ProductID)
	with := strings.TrimSpace(chat.SenderFirstName + " " + chat.SenderLastName)

	parts := []string{s.item.Render(title), s.detail.Render("with " + orNA(with))}
	if chat.UnseenCount > 0 {
		unreadStyle := lipgloss.NewStyle().Bold(true).Foreground(interpolateColor(float64(chat.UnseenCount), 0, 10))
		parts = append(parts, unreadStyle.Render(fmt.Sprintf("%d unread", chat.UnseenCount)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

type userView struct {
	user domain.User
}

func User(user domain.User) View {
	return userView{user: user}
}

func (v userView) render(s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.title.Render("Signed in as "+v.user.DisplayName()),
		field(s, "email", orNA(v.user.Email)),
		field(s, "user id", orNA(v.user.UserID)),
	)
}

type messagesView struct {
	messages []domain.Message
	self     string
	now      time.Time
}

// Messages renders a conversation transcript. Messages sent by self are
// labelled "you".
func Messages(messages []domain.Message, self string, now time.Time) View {
	return messagesView{messages: messages, self: self, now: now}
}

func (v messagesView) render(s styles) string {
	lines := []string{
		s.title.Render("Messages"),
		s.header.Render(fmt.Sprintf("messages: %d", len(v.messages))),
	}

	if len(v.messages) == 0 {
		lines = append(lines, s.empty.Render("No messages yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, msg := range v.messages {
		lines = append(lines, MessageLine(msg, v.self, v.now))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// MessageLine formats one chat message for transcripts and the chat view.
func MessageLine(msg domain.Message, self string, now time.Time) string {
	s := newStyles()

	author := s.other.Render(orNA(msg.Sender))
	if msg.Sender == self {
		author = s.self.Render("you")
	}

	parts := []string{}
	if !msg.CreatedAt.IsZero() {
		parts = append(parts, s.timestamp.Render(formatAge(msg.CreatedAt, now)), " ")
	}
	parts = append(parts, author, s.meta.Render(":"), " ", s.detail.Render(msg.Content))
	if msg.Sender == self && msg.Seen {
		parts = append(parts, " ", s.meta.Render("(seen)"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func productTitle(product domain.Product) string {
	name := strings.TrimSpace(product.Name)
	if name == "" {
		name = "untitled"
	}
	if product.ProductID == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, product.ProductID)
}

func productFacts(product domain.Product, labels Labels) string {
	facts := []string{
		labelFor(labels.Categories, product.Category),
		labelFor(labels.Statuses, product.Status),
	}
	if product.Condition != "" {
		facts = append(facts, product.Condition)
	}
	if product.Location != "" {
		facts = append(facts, product.Location)
	}
	return strings.Join(facts, " · ")
}

func labelFor(table *domain.ReferenceTable[int, string], id int) string {
	return table.Label(id, fmt.Sprintf("#%d", id))
}

func field(s styles, name, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(name+":"), " ", s.detail.Render(value))
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "n/a"
	}
	return value
}

func formatAge(at, now time.Time) string {
	if now.IsZero() {
		return at.Format("2006-01-02 15:04")
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(math.Floor(elapsed.Hours())), "hour") + " ago"
	default:
		return at.Format("15:04 on 02 Jan")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	baseColor := 240.0
	targetColor := 255.0
	interpolated := baseColor + (targetColor-baseColor)*normalized

	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
