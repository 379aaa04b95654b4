package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

const sampleDocument = `The honeybee colony is a superorganism of three castes. A single queen
lays up to two thousand eggs per day during the summer peak. Tens of
thousands of female workers run the hive: they nurse larvae, build comb,
guard the entrance and forage for nectar and pollen. A few hundred male
drones exist only to mate.

Workers communicate food locations through the waggle dance. The angle of
the dance relative to vertical encodes the direction of the food source
relative to the sun, and the duration of the waggle run encodes distance.
A forager that dances for one second is advertising a source roughly one
kilometer away.

Honey is made from nectar. Foragers pass nectar to house bees, who spread
it in cells and fan it with their wings until the water content drops
below twenty percent. The bees then cap the cell with wax. A strong
colony can store over fifty kilograms of honey, which it burns through
the winter by clustering and shivering to keep the queen at around
thirty degrees Celsius.

When the colony outgrows its cavity, it swarms. The old queen leaves with
about half the workers while scout bees evaluate candidate nest sites,
debating through dances until they reach a quorum. The remaining bees
raise a new queen from selected larvae fed exclusively on royal jelly.`

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, completions can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting Session Engine API Test\n")

	sessionID := fmt.Sprintf("console-%d", time.Now().Unix())
	sessionPath := "/session/v1/" + sessionID
	challengePath := "/challenge/v1/" + sessionID

	// 1. Upload a document
	color.Yellow("\n1. Upload Document")
	uploadReq := map[string]interface{}{
		"document_name": "honeybees.txt",
		"text":          sampleDocument,
	}
	resp, body, err := sendRequest("POST", sessionPath+"/document", uploadReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	if data := dataField(body); data != nil {
		fmt.Printf("Summary status: %v\n", data["summary_status"])
		fmt.Printf("Summary: %v\n", data["summary"])
	}

	// 2. First question
	color.Yellow("\n2. Ask: waggle dance")
	resp, body, err = sendRequest("POST", sessionPath+"/ask", map[string]interface{}{
		"question": "How do honeybees communicate where food is?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	if data := dataField(body); data != nil {
		fmt.Printf("Answer: %v\n", data["answer"])
	}

	// 3. Follow-up that only makes sense with history
	color.Yellow("\n3. Ask follow-up: 'how far is a one second dance?'")
	resp, body, err = sendRequest("POST", sessionPath+"/ask", map[string]interface{}{
		"question": "And how far away is the food if that dance lasts one second?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Answer: %v\n", data["answer"])
			fmt.Printf("Justification: %v\n", data["justification"])
		}
	}

	// 4. History should now hold both turns
	color.Yellow("\n4. Get History")
	resp, body, err = sendRequest("GET", sessionPath+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			if turns, ok := data["turns"].([]interface{}); ok {
				fmt.Printf("Turns: %d\n", len(turns))
			}
		}
	}

	// 5. Quiz
	color.Yellow("\n5. Generate Quiz")
	resp, body, err = sendRequest("POST", challengePath+"/quiz", nil)
	var firstQuestion string
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			if questions, ok := data["questions"].([]interface{}); ok {
				for _, q := range questions {
					if qm, ok := q.(map[string]interface{}); ok {
						fmt.Printf("  Q%v: %v\n", qm["id"], qm["text"])
						if firstQuestion == "" {
							firstQuestion, _ = qm["text"].(string)
						}
					}
				}
			}
		}
	}

	// 6. Evaluate a deliberately shaky answer to the first question
	if firstQuestion != "" {
		color.Yellow("\n6. Evaluate Answer")
		resp, body, err = sendRequest("POST", challengePath+"/evaluate", map[string]interface{}{
			"question":    firstQuestion,
			"user_answer": "I think it has something to do with dancing bees.",
		})
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			if data := dataField(body); data != nil {
				fmt.Printf("Correct: %v\n", data["is_correct"])
				fmt.Printf("Feedback: %v\n", data["feedback"])
			}
		}
	} else {
		color.Red("\n[SKIP] Evaluate skipped (no quiz question returned)")
	}

	// 7. Recent sessions should include this one
	color.Yellow("\n7. List Recent Sessions")
	resp, body, err = sendRequest("GET", "/session/v1/recent?limit=5", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var parsed map[string]interface{}
		json.Unmarshal(body, &parsed)
		prettyPrint(parsed["data"])
	}

	// 8. Reset, then verify the session is gone
	color.Yellow("\n8. Reset Session")
	resp, _, err = sendRequest("DELETE", sessionPath, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
	}

	color.Yellow("\n9. Ask After Reset (expect 404)")
	resp, body, err = sendRequest("POST", sessionPath+"/ask", map[string]interface{}{
		"question": "Is anyone still home?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else if resp.StatusCode == http.StatusNotFound {
		color.Green("Status: %s (as expected)", resp.Status)
	} else {
		color.Red("Unexpected status: %s", resp.Status)
		prettyPrint(string(body))
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
