// Package render 將 appstate 的狀態輸出為終端機文字：
// 清單、詳細、找不到、表單欄位錯誤與健康檢查等畫面。
package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"profilehub/internal/appstate"
	"profilehub/internal/profile"
)

// Renderer 寫入單一輸出；color 為 false 時不輸出任何 ANSI 序列。
type Renderer struct {
	w      io.Writer
	color  bool
	styles styles
}

type styles struct {
	title   lipgloss.Style
	current lipgloss.Style
	muted   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	warning lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7")),
		current: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ECE6A")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BB9AF7")).Width(10),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A")).Bold(true),
		danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F7768E")).Bold(true),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68")),
	}
}

// New 依 w 是否為終端機決定是否上色。
func New(w io.Writer) *Renderer {
	return NewWithColor(w, IsTerminal(w))
}

// NewWithColor 明確指定是否上色。
func NewWithColor(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color, styles: newStyles()}
}

// IsTerminal 回報 w 是否為 TTY（含 Cygwin 終端機）。
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// label 在不上色時以空白補齊寬度，與上色時的對齊一致。
func (r *Renderer) label(text string) string {
	if !r.color {
		return fmt.Sprintf("%-10s", text)
	}
	return r.styles.label.Render(text)
}

func (r *Renderer) println(a ...any) {
	fmt.Fprintln(r.w, a...)
}

// List 輸出清單畫面，目前選擇的 profile 以 ">" 標示。
func (r *Renderer) List(s appstate.State) {
	r.println(r.paint(r.styles.title, fmt.Sprintf("Profiles (%d)", len(s.Profiles))))
	if len(s.Profiles) == 0 {
		r.println(r.paint(r.styles.muted, "  No profiles yet."))
		return
	}
	for _, p := range s.Profiles {
		marker := " "
		name := fullName(p)
		if p.ID == s.CurrentProfileID {
			marker = ">"
			name = r.paint(r.styles.current, name)
		}
		r.println(fmt.Sprintf("%s %s <%s> %s", marker, name, p.Email, r.paint(r.styles.muted, p.ID)))
	}
}

// Detail 輸出單筆詳細畫面。
func (r *Renderer) Detail(p profile.Profile) {
	r.println(r.paint(r.styles.title, fullName(p)))
	r.println(r.label("id") + p.ID)
	r.println(r.label("firstName") + p.FirstName)
	r.println(r.label("lastName") + p.LastName)
	r.println(r.label("email") + p.Email)
	r.println(r.label("age") + ageText(p.Age))
}

// NotFound 輸出「找不到」畫面。
func (r *Renderer) NotFound(id string) {
	if id == "" {
		r.println(r.paint(r.styles.warning, "No profile selected."))
		return
	}
	r.println(r.paint(r.styles.warning, "Profile not found: "+id))
}

// FieldErrors 逐欄輸出檢核錯誤，欄位依名稱排序。
func (r *Renderer) FieldErrors(ve *profile.ValidationError) {
	if ve == nil {
		return
	}
	type line struct{ field, reason string }
	var lines []line
	for _, f := range ve.Missing {
		lines = append(lines, line{f, "is required"})
	}
	for _, f := range ve.Invalid {
		lines = append(lines, line{f, "is invalid"})
	}
	if len(lines) == 0 {
		r.println(r.paint(r.styles.danger, ve.Error()))
		return
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].field < lines[j].field })
	for _, l := range lines {
		r.println(r.paint(r.styles.danger, "✗ ") + r.label(l.field) + l.reason)
	}
}

// Error 輸出狀態中的錯誤；KindValidation 應改用 FieldErrors。
func (r *Renderer) Error(s appstate.State) {
	if s.ErrorKind == appstate.KindNone {
		return
	}
	r.println(r.paint(r.styles.danger, "Error: ") + s.Error)
}

// Notice 輸出提醒訊息（操作成功但結果與預期不同）。
func (r *Renderer) Notice(msg string) {
	r.println(r.paint(r.styles.warning, "Note: ") + msg)
}

// Saved 輸出儲存成功訊息。
func (r *Renderer) Saved(p profile.Profile) {
	r.println(r.paint(r.styles.success, "Saved ") + fullName(p) + " " + r.paint(r.styles.muted, p.ID))
}

// Deleted 輸出刪除成功訊息。
func (r *Renderer) Deleted(id string) {
	r.println(r.paint(r.styles.success, "Deleted ") + id)
}

// Health 輸出遠端可用性與將使用的後端。
func (r *Renderer) Health(apiURL string, available bool, backend string) {
	status := r.paint(r.styles.success, "up")
	if !available {
		status = r.paint(r.styles.danger, "down")
	}
	r.println(r.label("remote") + apiURL + " " + status)
	r.println(r.label("backend") + backend)
}

func fullName(p profile.Profile) string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func ageText(age *int) string {
	if age == nil {
		return "-"
	}
	return strconv.Itoa(*age)
}
