// internal/common/dataportal/client.go
//
// Package dataportal fetches support program records from the public
// data portal. The sync job pages through the API and upserts each
// record into the local program store.
package dataportal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consultation-workers/internal/models"
)

type Client struct {
	serviceKey string
	baseURL    string
	httpClient *http.Client
}

// programRecord mirrors the portal's JSON shape before normalization.
type programRecord struct {
	ProgramID      string `json:"pblancId"`
	Name           string `json:"pblancNm"`
	Category       string `json:"pldirSportRealmLclasCodeNm"`
	Agency         string `json:"jrsdInsttNm"`
	Description    string `json:"bsnsSumryCn"`
	VisaTypes      string `json:"trgetVisaCodes"`
	Location       string `json:"areaNm"`
	ApplicationURL string `json:"pblancUrl"`
	Deadline       string `json:"reqstEndDe"`
}

type listResponse struct {
	Response struct {
		Body struct {
			TotalCount int             `json:"totalCount"`
			PageNo     int             `json:"pageNo"`
			Items      []programRecord `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		serviceKey: serviceKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPrograms retrieves one page of support programs. The portal
// caps pages at 100 records.
func (c *Client) FetchPrograms(ctx context.Context, pageNo, numOfRows int) ([]models.SupportProgram, int, error) {
	if numOfRows <= 0 || numOfRows > 100 {
		numOfRows = 100
	}

	query := url.Values{}
	query.Set("serviceKey", c.serviceKey)
	query.Set("pageNo", fmt.Sprintf("%d", pageNo))
	query.Set("numOfRows", fmt.Sprintf("%d", numOfRows))
	query.Set("returnType", "json")

	reqURL := fmt.Sprintf("%s/supportPrograms?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create portal request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute portal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("portal returned status %d: %s", resp.StatusCode, string(body))
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, 0, fmt.Errorf("decode portal response: %w", err)
	}

	programs := make([]models.SupportProgram, 0, len(list.Response.Body.Items))
	for _, rec := range list.Response.Body.Items {
		programs = append(programs, normalizeRecord(rec))
	}
	return programs, list.Response.Body.TotalCount, nil
}

// normalizeRecord maps a portal record onto the local program shape.
// The portal lists visa codes as a comma-joined string and dates as
// yyyyMMdd.
func normalizeRecord(rec programRecord) models.SupportProgram {
	p := models.SupportProgram{
		ID:             rec.ProgramID,
		Name:           rec.Name,
		Category:       rec.Category,
		Agency:         rec.Agency,
		Description:    rec.Description,
		Location:       strings.TrimSpace(rec.Location),
		ApplicationURL: rec.ApplicationURL,
	}

	if rec.VisaTypes != "" {
		for _, v := range strings.Split(rec.VisaTypes, ",") {
			v = strings.TrimSpace(v)
			if v != "" {
				p.EligibleVisaTypes = append(p.EligibleVisaTypes, v)
			}
		}
	}

	if rec.Deadline != "" {
		if deadline, err := time.Parse("20060102", rec.Deadline); err == nil {
			p.Deadline = &deadline
		}
	}
	return p
}
