package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

const (
	defaultBaseURL = "http://127.0.0.1:8090"
	numWorkers     = 20
	testDuration   = 10 * time.Second
	numMeds        = 6
)

var baseURL = defaultBaseURL

var liquids = []string{"water", "soda"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type medication struct {
	ID             string   `json:"id"`
	DoseCount      int      `json:"doseCount"`
	ScheduledTimes []string `json:"scheduledTimes"`
}

func main() {
	if v := os.Getenv("DAILYTRACK_URL"); v != "" {
		baseURL = strings.TrimRight(v, "/")
	}

	fmt.Println("=== DailyTrack Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Seeding medications (POST /meds) ---")
	meds, err := seedMeds()
	if err != nil {
		fmt.Printf("FAILED: %s\n", err)
		return
	}
	fmt.Printf("Seeded %d medications\n", len(meds))

	fmt.Println("\n--- Phase 1: Write-heavy (liquid, toggles, day merges) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doAddLiquid(rng)
		case r < 0.80:
			return doToggle(rng, meds)
		default:
			return doMergeDay(rng)
		}
	})

	fmt.Println("\n--- Phase 2: Read-heavy (10% writes, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doAddLiquid(rng)
		case r < 0.40:
			return doGet("/today")
		case r < 0.60:
			return doGet("/fast")
		case r < 0.80:
			return doGet("/meds/next")
		default:
			return doGet("/log?month=" + time.Now().Format("2006-01") + "&metric=waterOz")
		}
	})
}

func seedMeds() ([]medication, error) {
	meds := make([]medication, 0, numMeds)
	for i := 0; i < numMeds; i++ {
		doses := i%3 + 1
		times := make([]string, doses)
		for d := range times {
			times[d] = fmt.Sprintf("%02d:00", 8+d*6)
		}
		body, _ := json.Marshal(map[string]interface{}{
			"name":           fmt.Sprintf("Med %d", i+1),
			"doseCount":      doses,
			"scheduledTimes": times,
		})
		resp, err := httpClient.Post(baseURL+"/meds", "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		var med medication
		err = json.NewDecoder(resp.Body).Decode(&med)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("POST /meds: status %d", resp.StatusCode)
		}
		meds = append(meds, med)
	}
	return meds, nil
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8s %6d %10s %10s %10s %10s\n",
			ep, humanize.Comma(s.count), s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %s reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		humanize.Comma(totalOps), totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doAddLiquid(rng *rand.Rand) result {
	data, _ := json.Marshal(map[string]interface{}{
		"kind": liquids[rng.Intn(len(liquids))],
		"oz":   float64(rng.Intn(16) + 1),
	})
	return post("/liquid", data, http.StatusOK)
}

func doToggle(rng *rand.Rand, meds []medication) result {
	med := meds[rng.Intn(len(meds))]
	data, _ := json.Marshal(map[string]interface{}{
		"id":    med.ID,
		"index": rng.Intn(med.DoseCount),
	})
	return post("/meds/toggle", data, http.StatusOK)
}

func doMergeDay(rng *rand.Rand) result {
	day := time.Now().AddDate(0, 0, -rng.Intn(30)).Format("2006-01-02")
	data, _ := json.Marshal(map[string]interface{}{
		"day":         day,
		"fastedHours": float64(rng.Intn(2000)) / 100,
	})
	return post("/log/day", data, http.StatusOK)
}

func post(path string, data []byte, want int) result {
	endpoint := "POST " + path
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func doGet(path string) result {
	endpoint := "GET " + strings.SplitN(path, "?", 2)[0]
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
