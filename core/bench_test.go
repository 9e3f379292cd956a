package core

import "testing"

type benchData struct {
	Items []struct {
		ChatID string `json:"chat_id"`
	} `json:"items"`
}

func BenchmarkDecodeFeishu(b *testing.B) {
	body := []byte(`{"code":0,"msg":"success","data":{"items":[{"chat_id":"oc_1"},{"chat_id":"oc_2"}]}}`)
	for b.Loop() {
		_, err := DecodeFeishu[benchData](body)
		if err != nil {
			b.Fatal(err)
		}
	}
}
