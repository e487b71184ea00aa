// Package templates renders patient notification copy for each delivery channel.
package templates

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"clinic-automation/internal/models"
)

const sentAtLayout = "02 Jan 2006, 3:04 PM"

// Options carries the clinic defaults substituted into every message
type Options struct {
	DefaultClinicName string
	DefaultDoctorName string
	ContactPhone      string
	Location          *time.Location
	Now               func() time.Time
}

// Engine renders message templates. It is safe for concurrent use.
type Engine struct {
	opts Options
	sets map[models.Channel]*template.Template
}

var chatEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var priorityMarkers = map[string]string{
	"low":    "💚",
	"normal": "💙",
	"high":   "🟡",
	"urgent": "🔴",
}

// NewEngine parses the templates for every channel
func NewEngine(opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	chatFuncs := template.FuncMap{
		"b": func(s string) string { return "<b>" + s + "</b>" },
		"i": func(s string) string { return "<i>" + s + "</i>" },
	}
	plainFuncs := template.FuncMap{
		"b": func(s string) string { return s },
		"i": func(s string) string { return s },
	}

	return &Engine{
		opts: opts,
		sets: map[models.Channel]*template.Template{
			models.ChannelChat: parse(chatFuncs),
			models.ChannelSMS:  parse(plainFuncs),
		},
	}
}

func parse(funcs template.FuncMap) *template.Template {
	root := template.New("messages").Funcs(funcs).Option("missingkey=zero")
	for name, src := range sources {
		template.Must(root.New(name).Parse(src))
	}
	return root
}

// Render returns the chat-formatted body for messageType. Unknown types use the
// generic notification template and absent fields render as empty text.
func (e *Engine) Render(messageType models.MessageType, fields models.Fields) string {
	return e.render(models.ChannelChat, messageType, fields)
}

// RenderFor formats req for delivery over channel
func (e *Engine) RenderFor(channel models.Channel, req models.MessageRequest) models.RenderedMessage {
	return models.RenderedMessage{
		Channel:   channel,
		Body:      e.render(channel, req.MessageType, req.Fields),
		Recipient: req.Recipient,
	}
}

func (e *Engine) render(channel models.Channel, messageType models.MessageType, fields models.Fields) string {
	set, ok := e.sets[channel]
	if !ok {
		set = e.sets[models.ChannelSMS]
	}

	name := string(messageType)
	if !messageType.Known() {
		name = genericTemplate
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, e.data(channel, fields)); err != nil {
		buf.Reset()
		if err := set.ExecuteTemplate(&buf, genericTemplate, e.data(channel, fields)); err != nil {
			return ""
		}
	}
	return buf.String()
}

func (e *Engine) data(channel models.Channel, fields models.Fields) map[string]string {
	data := map[string]string(fields.Clone())
	if data[models.FieldClinicName] == "" {
		data[models.FieldClinicName] = e.opts.DefaultClinicName
	}
	if data[models.FieldDoctorName] == "" {
		data[models.FieldDoctorName] = e.opts.DefaultDoctorName
	}
	data["contactPhone"] = e.opts.ContactPhone

	if channel == models.ChannelChat {
		for k, v := range data {
			data[k] = chatEscaper.Replace(v)
		}
	}

	data["priorityMarker"] = priorityMarkers[strings.ToLower(fields.Get(models.FieldPriority))]
	data["sentAt"] = e.opts.Now().In(e.opts.Location).Format(sentAtLayout)
	return data
}
