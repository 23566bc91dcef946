package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/fittrack-cli/internal/application"
	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const uploadingLabel = "Uploading image..."

type analyzeSubmittedMsg struct {
	handle *application.TaskHandle
	err    error
}

type analyzeProgressMsg struct {
	update application.TaskUpdate
}

type analyzeDoneMsg struct {
	outcome application.TaskOutcome
}

type analyzeSpinnerModel struct {
	spinner spinner.Model
	label   string
	submit  tea.Cmd
	outcome application.TaskOutcome
	err     error
	done    bool
}

func newAnalyzeSpinnerModel(submit tea.Cmd) analyzeSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return analyzeSpinnerModel{
		spinner: s,
		label:   uploadingLabel,
		submit:  submit,
	}
}

func (m analyzeSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.submit)
}

func (m analyzeSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case analyzeSubmittedMsg:
		if msg.err != nil {
			m.done = true
			m.err = msg.err
			return m, tea.Quit
		}
		return m, waitForOutcome(msg.handle)
	case analyzeProgressMsg:
		if msg.update.Message != "" {
			m.label = msg.update.Message
		}
		return m, nil
	case analyzeDoneMsg:
		m.done = true
		m.outcome = msg.outcome
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m analyzeSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func waitForOutcome(handle *application.TaskHandle) tea.Cmd {
	return func() tea.Msg {
		<-handle.Done()
		return analyzeDoneMsg{outcome: handle.Outcome()}
	}
}

// runAnalyzeSpinner submits image through poller and shows progress on output until the task
// reaches a terminal state. Cancelling ctx abandons the task.
func runAnalyzeSpinner(ctx context.Context, output io.Writer, poller *application.TaskPoller, credential string, image domain.ImageUpload) (application.TaskOutcome, error) {
	submitCmd := func() tea.Msg {
		handle, err := poller.Submit(ctx, credential, image)
		return analyzeSubmittedMsg{handle: handle, err: err}
	}

	p := tea.NewProgram(
		newAnalyzeSpinnerModel(submitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	poller.SetListener(func(update application.TaskUpdate) {
		p.Send(analyzeProgressMsg{update: update})
	})
	defer poller.SetListener(nil)

	finalModel, err := p.Run()
	if err != nil {
		poller.Abandon()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return application.TaskOutcome{}, fmt.Errorf("%w: %w", domain.ErrTaskAbandoned, ctxErr)
		}
		return application.TaskOutcome{}, err
	}

	result, ok := finalModel.(analyzeSpinnerModel)
	if !ok {
		poller.Abandon()
		return application.TaskOutcome{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	if result.err != nil {
		return application.TaskOutcome{}, result.err
	}
	if !result.done {
		poller.Abandon()
		return application.TaskOutcome{}, domain.ErrTaskAbandoned
	}

	return result.outcome, nil
}
