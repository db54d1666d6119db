package image

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateString renders a single template pattern with sprig functions
// available. Used for label values configured in spin.yaml.
func TemplateString(pattern string, args map[string]interface{}) (string, error) {
	t, err := template.New(pattern).Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return "", err
	}

	var output bytes.Buffer
	if err := t.Execute(&output, args); err != nil {
		return "", err
	}

	return output.String(), nil
}

// TemplateMap renders both keys and values of a label map.
func TemplateMap(source map[string]string, args map[string]interface{}) (map[string]string, error) {
	templated := map[string]string{}

	for label, value := range source {
		templatedLabel, err := TemplateString(label, args)
		if err != nil {
			return nil, err
		}
		templatedValue, err := TemplateString(value, args)
		if err != nil {
			return nil, err
		}
		templatedLabel = strings.Trim(templatedLabel, " \n")
		templatedValue = strings.Trim(templatedValue, " \n")
		templated[templatedLabel] = templatedValue
	}

	return templated, nil
}
