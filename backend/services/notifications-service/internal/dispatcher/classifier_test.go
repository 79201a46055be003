package dispatcher

import (
	"testing"

	"carpark/backend/libs/changefeed"
)

func openImage(sessionID string) *changefeed.SessionImage {
	return &changefeed.SessionImage{
		SessionID:       sessionID,
		CarRegistration: "AB12CDE",
		EntryTime:       1000,
	}
}

func closedImage(sessionID string, paymentDue float64) *changefeed.SessionImage {
	exitTime := int64(5000)
	durationHours := int64(2)
	return &changefeed.SessionImage{
		SessionID:       sessionID,
		CarRegistration: "AB12CDE",
		EntryTime:       1000,
		ExitTime:        &exitTime,
		DurationHours:   &durationHours,
		PaymentDue:      &paymentDue,
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		rec  changefeed.Record
		want Decision
	}{
		{
			name: "modify closing an open session",
			rec: changefeed.Record{
				Kind:   changefeed.ChangeModify,
				Before: openImage("s1"),
				After:  closedImage("s1", 4),
			},
			want: DecisionNotify,
		},
		{
			name: "insert of an already-closed row",
			rec: changefeed.Record{
				Kind:  changefeed.ChangeInsert,
				After: closedImage("s1", 4),
			},
			want: DecisionNotify,
		},
		{
			name: "insert of an open session",
			rec: changefeed.Record{
				Kind:  changefeed.ChangeInsert,
				After: openImage("s1"),
			},
			want: DecisionIgnore,
		},
		{
			name: "unrelated edit after close",
			rec: changefeed.Record{
				Kind:   changefeed.ChangeModify,
				Before: closedImage("s1", 4),
				After:  closedImage("s1", 4),
			},
			want: DecisionAlreadyClosed,
		},
		{
			name: "modify without before image",
			rec: changefeed.Record{
				Kind:  changefeed.ChangeModify,
				After: closedImage("s1", 4),
			},
			want: DecisionIgnore,
		},
		{
			name: "modify keeping session open",
			rec: changefeed.Record{
				Kind:   changefeed.ChangeModify,
				Before: openImage("s1"),
				After:  openImage("s1"),
			},
			want: DecisionIgnore,
		},
		{
			name: "delete of closed session",
			rec: changefeed.Record{
				Kind:   changefeed.ChangeDelete,
				Before: closedImage("s1", 4),
			},
			want: DecisionIgnore,
		},
		{
			name: "missing after image",
			rec: changefeed.Record{
				Kind: changefeed.ChangeModify,
			},
			want: DecisionIgnore,
		},
		{
			name: "after has exit time but no amount",
			rec: changefeed.Record{
				Kind:   changefeed.ChangeModify,
				Before: openImage("s1"),
				After: func() *changefeed.SessionImage {
					img := closedImage("s1", 4)
					img.PaymentDue = nil
					return img
				}(),
			},
			want: DecisionIgnore,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.rec); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	rec := changefeed.Record{
		Kind:   changefeed.ChangeModify,
		Before: openImage("s1"),
		After:  closedImage("s1", 4),
	}

	first := Classify(rec)
	for i := 0; i < 10; i++ {
		if got := Classify(rec); got != first {
			t.Fatalf("classification changed on re-evaluation: %v then %v", first, got)
		}
	}
	if first != DecisionNotify {
		t.Fatalf("Classify() = %v, want DecisionNotify", first)
	}
}
