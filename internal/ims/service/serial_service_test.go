package service

import (
	"crypto/md5"
	"fmt"
	"testing"
	"time"
)

func TestBuildSerialCode(t *testing.T) {
	at := time.UnixMilli(1735689600000)
	skuCode := "TFOC-HOODIE01-1A2B3C-M-R1"

	got := BuildSerialCode(skuCode, 7, at)

	digest := fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s-%d-%d", skuCode, 7, at.UnixMilli()))))
	want := fmt.Sprintf("%s-007-%s", skuCode, digest[:4])
	if got != want {
		t.Errorf("BuildSerialCode = %q, want %q", got, want)
	}
}

func TestBuildSerialCodeIndexPadding(t *testing.T) {
	at := time.UnixMilli(1735689600000)

	if got := BuildSerialCode("SKU", 1, at); got[:8] != "SKU-001-" {
		t.Errorf("index 1 prefix = %q, want SKU-001-", got[:8])
	}
	if got := BuildSerialCode("SKU", 123, at); got[:8] != "SKU-123-" {
		t.Errorf("index 123 prefix = %q, want SKU-123-", got[:8])
	}
	// 超过三位不截断
	if got := BuildSerialCode("SKU", 1234, at); got[:9] != "SKU-1234-" {
		t.Errorf("index 1234 prefix = %q, want SKU-1234-", got[:9])
	}
}

func TestBuildSerialCodeVariesByIndexAndTime(t *testing.T) {
	at := time.UnixMilli(1735689600000)

	a := BuildSerialCode("SKU", 1, at)
	b := BuildSerialCode("SKU", 2, at)
	c := BuildSerialCode("SKU", 1, at.Add(time.Millisecond))
	if a == b {
		t.Error("codes for different indexes should differ")
	}
	if a == c {
		t.Error("codes for different timestamps should differ")
	}
}
