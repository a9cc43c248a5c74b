package update

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/views"
)

var formFields = []model.FormField{model.FormFieldName, model.FormFieldDuration, model.FormFieldCategory}

func (m *Model) openForm() {
	m.Form = FormState{Active: true, Field: model.FormFieldName}
	m.nameInput.SetValue("")
	m.durationInput.SetValue("")
	m.categoryInput.SetValue("")
	m.focusFormField()
	m.Status = StatusBar{Text: "add timer"}
}

func (m *Model) closeForm() {
	m.Form = FormState{Field: model.FormFieldName}
	m.nameInput.Blur()
	m.durationInput.Blur()
	m.categoryInput.Blur()
}

func (m *Model) focusFormField() {
	m.nameInput.Blur()
	m.durationInput.Blur()
	m.categoryInput.Blur()
	switch m.Form.Field {
	case model.FormFieldName:
		m.nameInput.Focus()
	case model.FormFieldDuration:
		m.durationInput.Focus()
	case model.FormFieldCategory:
		if m.Form.Custom {
			m.categoryInput.Focus()
		}
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.Status = StatusBar{Text: "add cancelled"}
		return m
	case "enter":
		return m.submitForm()
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(formFields) - 1
		}
		for i, f := range formFields {
			if f == m.Form.Field {
				m.Form.Field = formFields[(i+step)%len(formFields)]
				break
			}
		}
		m.focusFormField()
		return m
	case "ctrl+e":
		m.Form.Custom = !m.Form.Custom
		m.Form.Field = model.FormFieldCategory
		m.focusFormField()
		return m
	}

	if m.Form.Field == model.FormFieldCategory && !m.Form.Custom {
		n := len(model.DefaultCategories)
		switch msg.String() {
		case "left", "h":
			m.Form.CategoryIndex = (m.Form.CategoryIndex + n - 1) % n
		case "right", "l":
			m.Form.CategoryIndex = (m.Form.CategoryIndex + 1) % n
		}
		return m
	}

	input := m.activeFormInput()
	if input == nil {
		return m
	}
	if msg.Type == tea.KeyRunes {
		input.SetValue(input.Value() + string(msg.Runes))
		return m
	}
	*input, _ = input.Update(msg)
	return m
}

func (m *Model) activeFormInput() *textinput.Model {
	switch m.Form.Field {
	case model.FormFieldName:
		return &m.nameInput
	case model.FormFieldDuration:
		return &m.durationInput
	case model.FormFieldCategory:
		if m.Form.Custom {
			return &m.categoryInput
		}
	}
	return nil
}

func (m Model) formCategory() string {
	if m.Form.Custom {
		return m.categoryInput.Value()
	}
	return model.DefaultCategories[clamp(m.Form.CategoryIndex, 0, len(model.DefaultCategories)-1)]
}

func (m Model) submitForm() Model {
	input, err := model.ValidateTimerForm(m.nameInput.Value(), m.durationInput.Value(), m.formCategory())
	if err != nil {
		var fe *model.FormError
		if errors.As(err, &fe) {
			m.Form.Err = fe.Message
			m.Form.Field = fe.Field
			m.focusFormField()
			return m
		}
		m.Form.Err = err.Error()
		return m
	}
	t, err := m.store.Create(m.ctx, input.Name, input.Duration, input.Category)
	if err != nil {
		m.Form.Err = err.Error()
		return m
	}
	m.closeForm()
	m.Status = StatusBar{Text: fmt.Sprintf("added %s (%s, %s)", t.Name, model.FormatClock(t.Duration), t.Category)}
	m.notify("Timer added", t.Name, "info")
	return m
}

func (m Model) renderFormView() string {
	return views.RenderFormPanel(views.FormPanelData{
		Field:         string(m.Form.Field),
		NameView:      m.nameInput.View(),
		DurationView:  m.durationInput.View(),
		CategoryView:  m.categoryInput.View(),
		Categories:    model.DefaultCategories,
		CategoryIndex: m.Form.CategoryIndex,
		Custom:        m.Form.Custom,
		ErrorText:     m.Form.Err,
	})
}
