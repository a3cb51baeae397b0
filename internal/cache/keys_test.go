package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "quiz",
			objectType:  "list",
			identifier:  "all",
			expectedKey: "ezquiz:quiz:list:all",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "quiz",
			objectType:  "list",
			identifier:  "all",
			paramsKey:   []string{},
			expectedKey: "ezquiz:quiz:list:all",
		},
		{
			name:        "explanation key",
			serviceName: "explain",
			objectType:  "question",
			identifier:  "01J9Z3",
			paramsKey:   []string{"3"},
			expectedKey: "ezquiz:explain:question:01J9Z3:3",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "explain",
			objectType:  "question",
			identifier:  "01J9Z3",
			paramsKey:   []string{"3", "vi"},
			expectedKey: "ezquiz:explain:question:01J9Z3:3_vi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}
