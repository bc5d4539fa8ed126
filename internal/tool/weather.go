package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// wttrResponse 是 wttr.in JSON 接口的响应子集。
type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		TempF       string `json:"temp_F"`
		Humidity    string `json:"humidity"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// weather 查询城市当前天气：温度（摄氏/华氏）、天况与湿度。
func (r *Registry) weather(ctx context.Context, city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return "Weather error: empty city name."
	}

	endpoint := fmt.Sprintf("https://wttr.in/%s?format=j1", url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("Weather error: %v", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Weather error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Could not find weather for '%s'.", city)
	}

	var data wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Sprintf("Weather error: %v", err)
	}
	if len(data.CurrentCondition) == 0 {
		return fmt.Sprintf("Could not find weather for '%s'.", city)
	}

	current := data.CurrentCondition[0]
	condition := ""
	if len(current.WeatherDesc) > 0 {
		condition = current.WeatherDesc[0].Value
	}
	return fmt.Sprintf("Weather in %s: %s°C (%s°F), %s, Humidity: %s%%",
		city, current.TempC, current.TempF, condition, current.Humidity)
}
