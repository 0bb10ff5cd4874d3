package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// unknownService is the default service name when detection fails
const unknownService = "unknown-service"

// namespaceFile is mounted into every pod by Kubernetes.
const namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// detectServiceInfo resolves the service name and namespace used by traces and profiles.
// Name priority:
// 1. OTEL_SERVICE_NAME env var (standard OpenTelemetry override)
// 2. SERVICE_NAME from config
// 3. unknownService
//
// Namespace priority:
// 1. service.namespace in OTEL_RESOURCE_ATTRIBUTES
// 2. Kubernetes service account namespace file
// 3. POD_NAMESPACE env var
// 4. "default"
func detectServiceInfo(configured string) (serviceName, namespace string) {
	// OTEL_SERVICE_NAME wins so a deployment can rename the service without a rebuild
	serviceName = os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = configured
	}

	// Fallback if still empty
	if serviceName == "" {
		serviceName = unknownService
	}

	// 1. OTEL_RESOURCE_ATTRIBUTES, e.g. "deployment.environment=prod,service.namespace=crm"
	if attrs := os.Getenv("OTEL_RESOURCE_ATTRIBUTES"); attrs != "" {
		for _, attr := range strings.Split(attrs, ",") {
			kv := strings.SplitN(attr, "=", 2)
			if len(kv) == 2 && strings.TrimSpace(kv[0]) == "service.namespace" {
				return serviceName, strings.TrimSpace(kv[1])
			}
		}
	}

	// 2. Kubernetes mounts the pod namespace here; absent outside a cluster
	if data, err := os.ReadFile(namespaceFile); err == nil {
		return serviceName, strings.TrimSpace(string(data))
	}

	// 3. POD_NAMESPACE env var (injected via the Downward API)
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return serviceName, ns
	}

	// Local runs
	return serviceName, "default"
}

// CreateResource creates an OpenTelemetry resource with auto-detected attributes.
// Tracing and profiling both label their data from it.
// On partial detection failure it still returns a usable minimal resource with the error.
func CreateResource(ctx context.Context, configuredName, version string) (*resource.Resource, error) {
	serviceName, namespace := detectServiceInfo(configuredName)

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),   // OTEL_RESOURCE_ATTRIBUTES and OTEL_SERVICE_NAME
		resource.WithProcess(),   // PID, executable, runtime
		resource.WithOS(),        // OS type and description
		resource.WithContainer(), // container ID when running in one
		resource.WithHost(),      // hostname
		resource.WithAttributes(
			// Detected identity; applied last so it overrides the detectors above
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		// Detector errors are partial; keep the service identity at minimum
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
			semconv.ServiceVersionKey.String(version),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	for _, attr := range res.Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			return attr.Value.AsString()
		}
	}
	return unknownService
}
