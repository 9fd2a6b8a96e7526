package http

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"gradecast/ml"
	"gradecast/monitoring"
	"gradecast/predict"
)

// RegisterFormHandlers wires the browser-facing form routes.
func RegisterFormHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /", handleForm)
	mux.HandleFunc("POST /", handleFormSubmit)
}

type barView struct {
	Label    string
	Value    string
	Width    int // percent of the widest bar
	Negative bool
}

type formView struct {
	Input        predict.UserInput
	HasResult    bool
	Grade        string
	BaseValue    string
	Error        string
	Attributions []barView
	Importances  []barView
}

func handleForm(w http.ResponseWriter, r *http.Request) {
	renderForm(w, formView{Input: defaultFormInput()})
}

func handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	service := getPredictor()
	if service == nil {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	input, err := parseFormInput(r)
	if err != nil {
		renderForm(w, formView{Input: defaultFormInput(), Error: err.Error()})
		return
	}

	session, err := service.Predict(input)
	if err != nil {
		renderForm(w, formView{Input: input, Error: err.Error()})
		return
	}
	sessions.Set(session)
	if h := getHub(); h != nil {
		h.PublishPrediction(monitoring.PredictionEvent{
			SessionID: session.ID,
			School:    session.Input.School,
			Grade:     session.Grade,
		})
	}

	view := formView{
		Input:     input,
		HasResult: true,
		Grade:     fmt.Sprintf("%.2f", session.Grade),
		BaseValue: fmt.Sprintf("%.2f", service.BaseValue()),
	}
	if attrs, err := service.ExplainLocal(session); err == nil {
		view.Attributions = attributionBars(ml.TopAttributions(attrs, getTopN()))
	}
	view.Importances = importanceBars(ml.TopImportances(service.ExplainGlobal(), getTopN()))

	renderForm(w, view)
}

func defaultFormInput() predict.UserInput {
	return predict.UserInput{School: "GP", Sex: "F", Age: 17, StudyTime: 2, Failures: 0, Absences: 4}
}

func parseFormInput(r *http.Request) (predict.UserInput, error) {
	input := predict.UserInput{
		School: r.FormValue("school"),
		Sex:    r.FormValue("sex"),
	}
	fields := []struct {
		name string
		dst  *int
	}{
		{"age", &input.Age},
		{"studytime", &input.StudyTime},
		{"failures", &input.Failures},
		{"absences", &input.Absences},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(r.FormValue(f.name))
		if err != nil {
			return predict.UserInput{}, fmt.Errorf("field %s must be a whole number", f.name)
		}
		*f.dst = n
	}
	return input, nil
}

func attributionBars(attrs []ml.Attribution) []barView {
	widest := 0.0
	for _, a := range attrs {
		if abs := math.Abs(a.Value); abs > widest {
			widest = abs
		}
	}
	bars := make([]barView, 0, len(attrs))
	for _, a := range attrs {
		bars = append(bars, barView{
			Label:    a.Feature,
			Value:    fmt.Sprintf("%+.3f", a.Value),
			Width:    barWidth(math.Abs(a.Value), widest),
			Negative: a.Value < 0,
		})
	}
	return bars
}

func importanceBars(imps []ml.Importance) []barView {
	widest := 0.0
	for _, imp := range imps {
		if imp.Score > widest {
			widest = imp.Score
		}
	}
	bars := make([]barView, 0, len(imps))
	for _, imp := range imps {
		bars = append(bars, barView{
			Label: imp.Feature,
			Value: fmt.Sprintf("%.3f", imp.Score),
			Width: barWidth(imp.Score, widest),
		})
	}
	return bars
}

func barWidth(value, widest float64) int {
	if widest <= 0 {
		return 0
	}
	w := int(math.Round(value / widest * 100))
	if w < 2 {
		w = 2
	}
	return w
}

func renderForm(w http.ResponseWriter, view formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, view); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

var formTemplate = template.Must(template.New("form").Parse(formHTML))

const formHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Final Grade Forecast</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f4f6f8; color: #1f2933; }
  .wrap { max-width: 760px; margin: 32px auto; padding: 0 16px; }
  .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.12); padding: 24px; margin-bottom: 24px; }
  h1 { font-size: 22px; margin: 0 0 16px; }
  h2 { font-size: 16px; margin: 0 0 12px; }
  form { display: grid; grid-template-columns: repeat(3, 1fr); gap: 12px 16px; }
  label { display: block; font-size: 13px; margin-bottom: 4px; color: #52606d; }
  input, select { width: 100%; padding: 6px 8px; border: 1px solid #cbd2d9; border-radius: 4px; box-sizing: border-box; }
  button { grid-column: 1 / -1; padding: 10px; border: 0; border-radius: 4px; background: #2563eb; color: #fff; font-size: 15px; cursor: pointer; }
  .grade { font-size: 40px; font-weight: 600; }
  .muted { color: #52606d; font-size: 13px; }
  .error { background: #fde8e8; color: #9b1c1c; padding: 10px 12px; border-radius: 4px; margin-bottom: 16px; }
  .bar-row { display: flex; align-items: center; margin-bottom: 6px; font-size: 13px; }
  .bar-label { width: 180px; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
  .bar-track { flex: 1; margin: 0 8px; }
  .bar { height: 14px; border-radius: 3px; background: #2563eb; }
  .bar.neg { background: #dc2626; }
  .bar-value { width: 64px; text-align: right; font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
<div class="wrap">
  <div class="card">
    <h1>Final Grade Forecast</h1>
    {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
    <form method="post" action="/">
      <div>
        <label for="school">School</label>
        <select id="school" name="school">
          <option value="GP" {{if eq .Input.School "GP"}}selected{{end}}>GP</option>
          <option value="MS" {{if eq .Input.School "MS"}}selected{{end}}>MS</option>
        </select>
      </div>
      <div>
        <label for="sex">Sex</label>
        <select id="sex" name="sex">
          <option value="F" {{if eq .Input.Sex "F"}}selected{{end}}>F</option>
          <option value="M" {{if eq .Input.Sex "M"}}selected{{end}}>M</option>
        </select>
      </div>
      <div>
        <label for="age">Age</label>
        <input id="age" name="age" type="number" min="15" max="22" value="{{.Input.Age}}">
      </div>
      <div>
        <label for="studytime">Weekly study time (1-4)</label>
        <input id="studytime" name="studytime" type="number" min="1" max="4" value="{{.Input.StudyTime}}">
      </div>
      <div>
        <label for="failures">Past failures</label>
        <input id="failures" name="failures" type="number" min="0" max="4" value="{{.Input.Failures}}">
      </div>
      <div>
        <label for="absences">Absences</label>
        <input id="absences" name="absences" type="number" min="0" max="50" value="{{.Input.Absences}}">
      </div>
      <button type="submit">Predict final grade</button>
    </form>
  </div>

  {{if .HasResult}}
  <div class="card">
    <h2>Predicted final grade (0-20)</h2>
    <div class="grade">{{.Grade}}</div>
    <div class="muted">Model baseline: {{.BaseValue}}</div>
  </div>

  {{if .Attributions}}
  <div class="card">
    <h2>What drove this prediction</h2>
    {{range .Attributions}}
    <div class="bar-row">
      <span class="bar-label">{{.Label}}</span>
      <span class="bar-track"><span class="bar{{if .Negative}} neg{{end}}" style="width: {{.Width}}%; display: block;"></span></span>
      <span class="bar-value">{{.Value}}</span>
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Importances}}
  <div class="card">
    <h2>Model-wide feature importance</h2>
    {{range .Importances}}
    <div class="bar-row">
      <span class="bar-label">{{.Label}}</span>
      <span class="bar-track"><span class="bar" style="width: {{.Width}}%; display: block;"></span></span>
      <span class="bar-value">{{.Value}}</span>
    </div>
    {{end}}
  </div>
  {{end}}
  {{end}}
</div>
</body>
</html>`
