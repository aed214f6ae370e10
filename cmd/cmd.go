package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvkalinin/jalali-calendar/log"
)

func makeUrl(serverUrl string, path string) string {
	return strings.TrimRight(serverUrl, "/") + path
}

func readJsonError(body []byte) error {
	restErr := &struct {
		Msg string `json:"msg"`
	}{}
	if err := json.Unmarshal(body, restErr); err != nil {
		return fmt.Errorf("cannot read error msg: %w", err)
	}
	return errors.New(restErr.Msg)
}

// adminClient выполняет запросы к /api/admin/* от имени пользователя admin.
type adminClient struct {
	ServerUrl string
	Passwd    string
	Timeout   time.Duration
}

// do возвращает ответ со статусом 200, иначе ошибку из тела ответа. Тело ответа закрывает вызывающий.
func (c *adminClient) do(method, path string, body io.Reader, contentType string) (*http.Response, error) {
	url := makeUrl(c.ServerUrl, path)
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("cannot make request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth("admin", c.Passwd)
	log.Printf("[DEBUG] admin request: %s %s", method, url)

	client := &http.Client{Timeout: c.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot make request: %w", err)
	}
	log.Printf("[DEBUG] admin response: %s", resp.Status)

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	defer closeBody(resp)
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read err response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("unauthorized, check admin password")
	}
	return nil, fmt.Errorf("status %d: %w", resp.StatusCode, readJsonError(respBody))
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("[WARN] cannot close response: %v", err)
	}
}
