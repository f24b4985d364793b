// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hud

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 12

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	doneStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fadingStyle   = lipgloss.NewStyle().Faint(true)
	blockStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	emptyStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

// Render draws every live view, ordered by display number.
func (h *HUD) Render() string {
	views := h.Views()
	if len(views) == 0 {
		return emptyStyle.Render("no active tasks")
	}
	blocks := make([]string, 0, len(views))
	for _, v := range views {
		if v.visibility == Hidden {
			continue
		}
		blocks = append(blocks, h.renderView(v))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (h *HUD) renderView(v *View) string {
	title := titleStyle.Render("#"+v.number+" "+v.task.Name) + " " + progressStyle.Render(v.task.ProgressText())
	if v.flash {
		title += " " + doneStyle.Render("✓ complete")
	}
	lines := []string{title, progressBar(v.task.Percent())}
	if v.task.Description != "" {
		lines = append(lines, descStyle.Render(v.task.Description))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	block := blockStyle.Width(h.width).Render(body)
	if v.visibility == FadingIn || v.visibility == FadingOut {
		block = fadingStyle.Render(block)
	}
	return block
}

func progressBar(percent float64) string {
	filled := int(percent*barWidth + 0.5)
	filled = min(max(filled, 0), barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}
