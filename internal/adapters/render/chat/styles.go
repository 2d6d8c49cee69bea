package chat

import (
	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	meta    lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
	empty   lipgloss.Style
	input   lipgloss.Style
	help    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		online:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		empty:   lipgloss.NewStyle().Faint(true),
		input:   lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color("241")),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

func (s styles) toast(kind domain.ToastKind) lipgloss.Style {
	switch kind {
	case domain.ToastSuccess:
		return s.success
	case domain.ToastError:
		return s.failure
	case domain.ToastWarning:
		return s.warning
	default:
		return s.info
	}
}
