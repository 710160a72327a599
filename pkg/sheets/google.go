package sheets

import (
	"context"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	errs "igtracker/pkg/errors"
)

// GoogleValues is the production valuesAPI, backed by the Google Sheets
// service authenticated with a service account key file.
type GoogleValues struct {
	svc *sheetsapi.Service
}

// NewGoogleValues builds the service from the JWT credentials at the given
// path. A missing or malformed key file is a configuration error; failure
// to construct the service is a connection error.
func NewGoogleValues(ctx context.Context, credentialsPath string) (*GoogleValues, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConfiguration, "failed to read credentials file %s: %v", credentialsPath, err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConfiguration, "invalid service account credentials: %v", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConnection, "failed to create sheets service: %v", err)
	}

	return &GoogleValues{svc: svc}, nil
}

func (g *GoogleValues) Get(spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *GoogleValues) Append(spreadsheetID, writeRange string, values [][]interface{}, valueInputOption string) error {
	body := &sheetsapi.ValueRange{Values: values}
	_, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, writeRange, body).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Do()
	return err
}

func (g *GoogleValues) Update(spreadsheetID, writeRange string, values [][]interface{}, valueInputOption string) error {
	body := &sheetsapi.ValueRange{Values: values}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, body).
		ValueInputOption(valueInputOption).
		Do()
	return err
}

func (g *GoogleValues) Clear(spreadsheetID, clearRange string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).Do()
	return err
}
